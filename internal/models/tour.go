package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Сложность тура.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// Tour документ коллекции tours.
type Tour struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name            string             `bson:"name,omitempty" json:"name,omitempty" validate:"required,min=10,max=40"`
	Slug            string             `bson:"slug,omitempty" json:"slug,omitempty"`
	Duration        int                `bson:"duration,omitempty" json:"duration,omitempty" validate:"required,gt=0"`
	MaxGroupSize    int                `bson:"maxGroupSize,omitempty" json:"maxGroupSize,omitempty" validate:"required,gt=0"`
	Difficulty      string             `bson:"difficulty,omitempty" json:"difficulty,omitempty" validate:"required,oneof=easy medium difficult"`
	RatingsAverage  float64            `bson:"ratingsAverage,omitempty" json:"ratingsAverage,omitempty" validate:"omitempty,gte=1,lte=5"`
	RatingsQuantity int                `bson:"ratingsQuantity,omitempty" json:"ratingsQuantity,omitempty" validate:"gte=0"`
	Price           float64            `bson:"price,omitempty" json:"price,omitempty" validate:"required,gt=0"`
	PriceDiscount   float64            `bson:"priceDiscount,omitempty" json:"priceDiscount,omitempty" validate:"omitempty,gte=0,ltfield=Price"`
	Summary         string             `bson:"summary,omitempty" json:"summary,omitempty" validate:"required"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageCover      string             `bson:"imageCover,omitempty" json:"imageCover,omitempty" validate:"required"`
	Images          []string           `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt       *time.Time         `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	StartDates      []time.Time        `bson:"startDates,omitempty" json:"startDates,omitempty"`
	SecretTour      bool               `bson:"secretTour,omitempty" json:"secretTour,omitempty"`
	Version         int                `bson:"__v,omitempty" json:"-"`
}

// DefaultRatingsAverage рейтинг нового тура без отзывов.
const DefaultRatingsAverage = 4.5

// TourPatch частичное обновление тура. nil означает «не менять».
type TourPatch struct {
	Name            *string      `json:"name" validate:"omitempty,min=10,max=40"`
	Duration        *int         `json:"duration" validate:"omitempty,gt=0"`
	MaxGroupSize    *int         `json:"maxGroupSize" validate:"omitempty,gt=0"`
	Difficulty      *string      `json:"difficulty" validate:"omitempty,oneof=easy medium difficult"`
	RatingsAverage  *float64     `json:"ratingsAverage" validate:"omitempty,gte=1,lte=5"`
	RatingsQuantity *int         `json:"ratingsQuantity" validate:"omitempty,gte=0"`
	Price           *float64     `json:"price" validate:"omitempty,gt=0"`
	PriceDiscount   *float64     `json:"priceDiscount" validate:"omitempty,gte=0"`
	Summary         *string      `json:"summary" validate:"omitempty,min=1"`
	Description     *string      `json:"description"`
	ImageCover      *string      `json:"imageCover" validate:"omitempty,min=1"`
	Images          *[]string    `json:"images"`
	StartDates      *[]time.Time `json:"startDates"`
	SecretTour      *bool        `json:"secretTour"`
}

// Empty сообщает, что обновлять нечего.
func (p TourPatch) Empty() bool {
	return p.Name == nil && p.Duration == nil && p.MaxGroupSize == nil && p.Difficulty == nil &&
		p.RatingsAverage == nil && p.RatingsQuantity == nil && p.Price == nil && p.PriceDiscount == nil &&
		p.Summary == nil && p.Description == nil && p.ImageCover == nil && p.Images == nil &&
		p.StartDates == nil && p.SecretTour == nil
}

// Normalize убирает пробелы по краям названия и описания. Вызывается до проверки.
func (t *Tour) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	t.Summary = strings.TrimSpace(t.Summary)
}

// Normalize убирает пробелы по краям названия и описания, не трогая исходные строки.
func (p *TourPatch) Normalize() {
	p.Name = trimPtr(p.Name)
	p.Summary = trimPtr(p.Summary)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
