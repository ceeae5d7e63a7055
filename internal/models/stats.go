package models

// TourStats статистика туров одной сложности.
type TourStats struct {
	Difficulty string  `bson:"_id" json:"_id"`
	NumTours   int     `bson:"numTours" json:"numTours"`
	NumRatings int     `bson:"numRatings" json:"numRatings"`
	AvgRating  float64 `bson:"avgRating" json:"avgRating"`
	AvgPrice   float64 `bson:"avgPrice" json:"avgPrice"`
	MinPrice   float64 `bson:"minPrice" json:"minPrice"`
	MaxPrice   float64 `bson:"maxPrice" json:"maxPrice"`
}

// MonthlyPlan число стартов туров в месяце года.
type MonthlyPlan struct {
	Month     int      `bson:"month" json:"month"`
	MonthName string   `bson:"-" json:"monthName"`
	NumTours  int      `bson:"numTours" json:"numTours"`
	Tours     []string `bson:"tours" json:"tours"`
}
