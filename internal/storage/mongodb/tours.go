package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/natours/internal/lib/queryfeatures"
	"github.com/magabrotheeeer/natours/internal/models"
	"github.com/magabrotheeeer/natours/internal/storage"
)

// StatsMinRating минимальный рейтинг тура для попадания в статистику.
const StatsMinRating = 4.5

// TourSchema типы полей тура для построителя запросов.
var TourSchema = queryfeatures.Schema{
	"_id":             queryfeatures.ObjectID,
	"name":            queryfeatures.String,
	"slug":            queryfeatures.String,
	"duration":        queryfeatures.Number,
	"maxGroupSize":    queryfeatures.Number,
	"difficulty":      queryfeatures.String,
	"ratingsAverage":  queryfeatures.Number,
	"ratingsQuantity": queryfeatures.Number,
	"price":           queryfeatures.Number,
	"priceDiscount":   queryfeatures.Number,
	"createdAt":       queryfeatures.Date,
	"startDates":      queryfeatures.Date,
	"secretTour":      queryfeatures.Bool,
}

// TourRepository хранит туры в коллекции tours.
type TourRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewTourRepository создаёт репозиторий туров.
func NewTourRepository(db *mongo.Database) *TourRepository {
	return &TourRepository{
		coll: db.Collection(toursCollection),
		now:  time.Now,
	}
}

// visibleOnly скрывает секретные туры.
func visibleOnly(filter bson.M) bson.M {
	visible := bson.M{"secretTour": bson.M{"$ne": true}}
	if len(filter) == 0 {
		return visible
	}
	return bson.M{"$and": bson.A{filter, visible}}
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify строит slug из названия тура.
func Slugify(name string) string {
	return strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

func (r *TourRepository) prepare(t *models.Tour) {
	if t.CreatedAt == nil {
		now := r.now().UTC().Truncate(time.Millisecond)
		t.CreatedAt = &now
	}
	if t.RatingsAverage == 0 {
		t.RatingsAverage = models.DefaultRatingsAverage
	}
	t.Slug = Slugify(t.Name)
}

// Find возвращает видимые туры по собранному запросу.
func (r *TourRepository) Find(ctx context.Context, q queryfeatures.Query) ([]*models.Tour, error) {
	const op = "storage.mongodb.tours.Find"

	cursor, err := r.coll.Find(ctx, visibleOnly(q.Filter), q.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	tours := make([]*models.Tour, 0)
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tours, nil
}

// FindByID возвращает видимый тур по id.
func (r *TourRepository) FindByID(ctx context.Context, id string) (*models.Tour, error) {
	const op = "storage.mongodb.tours.FindByID"
	oid, err := objectID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var t models.Tour
	err = r.coll.FindOne(ctx, visibleOnly(bson.M{"_id": oid}), options.FindOne().SetProjection(bson.M{"__v": 0})).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}

// Create вставляет тур, заполняя slug, дату создания и рейтинг по умолчанию.
func (r *TourRepository) Create(ctx context.Context, t *models.Tour) error {
	const op = "storage.mongodb.tours.Create"

	r.prepare(t)
	res, err := r.coll.InsertOne(ctx, t)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = id
	}
	return nil
}

// InsertMany загружает набор туров и возвращает число вставленных.
func (r *TourRepository) InsertMany(ctx context.Context, tours []*models.Tour) (int, error) {
	const op = "storage.mongodb.tours.InsertMany"
	if len(tours) == 0 {
		return 0, nil
	}
	docs := make([]any, 0, len(tours))
	for _, t := range tours {
		r.prepare(t)
		docs = append(docs, t)
	}
	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return len(res.InsertedIDs), nil
}

// Update применяет частичное обновление и возвращает новую версию тура.
func (r *TourRepository) Update(ctx context.Context, id string, patch models.TourPatch) (*models.Tour, error) {
	const op = "storage.mongodb.tours.Update"
	oid, err := objectID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	set := tourSet(patch)
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"__v": 0})
	var t models.Tour
	err = r.coll.FindOneAndUpdate(ctx, visibleOnly(bson.M{"_id": oid}), bson.M{"$set": set, "$inc": bson.M{"__v": 1}}, opts).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}

func tourSet(p models.TourPatch) bson.M {
	set := bson.M{}
	if p.Name != nil {
		set["name"] = *p.Name
		set["slug"] = Slugify(*p.Name)
	}
	if p.Duration != nil {
		set["duration"] = *p.Duration
	}
	if p.MaxGroupSize != nil {
		set["maxGroupSize"] = *p.MaxGroupSize
	}
	if p.Difficulty != nil {
		set["difficulty"] = *p.Difficulty
	}
	if p.RatingsAverage != nil {
		set["ratingsAverage"] = *p.RatingsAverage
	}
	if p.RatingsQuantity != nil {
		set["ratingsQuantity"] = *p.RatingsQuantity
	}
	if p.Price != nil {
		set["price"] = *p.Price
	}
	if p.PriceDiscount != nil {
		set["priceDiscount"] = *p.PriceDiscount
	}
	if p.Summary != nil {
		set["summary"] = *p.Summary
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.ImageCover != nil {
		set["imageCover"] = *p.ImageCover
	}
	if p.Images != nil {
		set["images"] = *p.Images
	}
	if p.StartDates != nil {
		set["startDates"] = *p.StartDates
	}
	if p.SecretTour != nil {
		set["secretTour"] = *p.SecretTour
	}
	return set
}

// Delete удаляет видимый тур.
func (r *TourRepository) Delete(ctx context.Context, id string) error {
	const op = "storage.mongodb.tours.Delete"
	oid, err := objectID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := r.coll.DeleteOne(ctx, visibleOnly(bson.M{"_id": oid}))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

// DeleteAll очищает коллекцию, включая секретные туры.
func (r *TourRepository) DeleteAll(ctx context.Context) (int64, error) {
	const op = "storage.mongodb.tours.DeleteAll"
	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return res.DeletedCount, nil
}

// Stats группирует туры с рейтингом от StatsMinRating по сложности.
func (r *TourRepository) Stats(ctx context.Context) ([]models.TourStats, error) {
	const op = "storage.mongodb.tours.Stats"

	pipeline := []bson.M{
		{"$match": visibleOnly(nil)},
		{"$match": bson.M{"ratingsAverage": bson.M{"$gte": StatsMinRating}}},
		{"$group": bson.M{
			"_id":        bson.M{"$toUpper": "$difficulty"},
			"numTours":   bson.M{"$sum": 1},
			"numRatings": bson.M{"$sum": "$ratingsQuantity"},
			"avgRating":  bson.M{"$avg": "$ratingsAverage"},
			"avgPrice":   bson.M{"$avg": "$price"},
			"minPrice":   bson.M{"$min": "$price"},
			"maxPrice":   bson.M{"$max": "$price"},
		}},
		{"$sort": bson.M{"avgRating": 1}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	stats := make([]models.TourStats, 0)
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}

// MonthlyPlan считает старты туров по месяцам года, самые загруженные месяцы первыми.
func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]models.MonthlyPlan, error) {
	const op = "storage.mongodb.tours.MonthlyPlan"

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	pipeline := []bson.M{
		{"$match": visibleOnly(nil)},
		{"$unwind": "$startDates"},
		{"$match": bson.M{"startDates": bson.M{"$gte": from, "$lt": to}}},
		{"$group": bson.M{
			"_id":      bson.M{"$month": "$startDates"},
			"numTours": bson.M{"$sum": 1},
			"tours":    bson.M{"$push": "$name"},
		}},
		{"$addFields": bson.M{"month": "$_id"}},
		{"$project": bson.M{"_id": 0}},
		{"$sort": bson.D{{Key: "numTours", Value: -1}, {Key: "month", Value: 1}}},
		{"$limit": 12},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	plan := make([]models.MonthlyPlan, 0)
	if err := cursor.All(ctx, &plan); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range plan {
		plan[i].MonthName = time.Month(plan[i].Month).String()
	}
	return plan, nil
}
