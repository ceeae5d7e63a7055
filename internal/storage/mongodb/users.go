package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/natours/internal/apperr"
	"github.com/magabrotheeeer/natours/internal/lib/queryfeatures"
	"github.com/magabrotheeeer/natours/internal/models"
	"github.com/magabrotheeeer/natours/internal/storage"
)

// Pipeline шаги, выполняемые перед записью пользователя.
type Pipeline interface {
	BeforeCreate(ctx context.Context, u *models.User) error
	BeforeSave(ctx context.Context, u *models.User, opts models.SaveOptions) error
}

// UserRepository хранит пользователей в коллекции users.
type UserRepository struct {
	coll     *mongo.Collection
	pipeline Pipeline
}

// NewUserRepository создаёт репозиторий. pipeline вызывается при каждой вставке и сохранении.
func NewUserRepository(db *mongo.Database, pipeline Pipeline) *UserRepository {
	return &UserRepository{
		coll:     db.Collection(usersCollection),
		pipeline: pipeline,
	}
}

// activeOnly добавляет к фильтру условие active != false.
func activeOnly(filter bson.M) bson.M {
	active := bson.M{"active": bson.M{"$ne": false}}
	if len(filter) == 0 {
		return active
	}
	return bson.M{"$and": bson.A{filter, active}}
}

// Create вставляет нового пользователя.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	const op = "storage.mongodb.users.Create"

	if err := r.pipeline.BeforeCreate(ctx, u); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return nil
}

// Save заменяет документ пользователя целиком после конвейера сохранения.
func (r *UserRepository) Save(ctx context.Context, u *models.User, opts models.SaveOptions) error {
	const op = "storage.mongodb.users.Save"

	if u.ID.IsZero() {
		return fmt.Errorf("%s: user has no id", op)
	}
	if err := r.pipeline.BeforeSave(ctx, u, opts); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

// FindByID ищет активного пользователя по id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.mongodb.users.FindByID"
	oid, err := objectID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r.findOne(ctx, op, activeOnly(bson.M{"_id": oid}))
}

// FindByIDUnscoped ищет пользователя по id, включая деактивированных.
func (r *UserRepository) FindByIDUnscoped(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.mongodb.users.FindByIDUnscoped"
	oid, err := objectID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return r.findOne(ctx, op, bson.M{"_id": oid})
}

// FindByEmail ищет активного пользователя по email без учёта регистра.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.mongodb.users.FindByEmail"
	return r.findOne(ctx, op, activeOnly(bson.M{"email": strings.ToLower(strings.TrimSpace(email))}))
}

// FindByResetToken ищет пользователя с совпадающим хешем токена, срок которого ещё не истёк.
func (r *UserRepository) FindByResetToken(ctx context.Context, hash string, now time.Time) (*models.User, error) {
	const op = "storage.mongodb.users.FindByResetToken"
	if hash == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return r.findOne(ctx, op, activeOnly(bson.M{
		"passwordResetToken":   hash,
		"passwordResetExpires": bson.M{"$gt": now},
	}))
}

// List возвращает активных пользователей по собранному запросу.
func (r *UserRepository) List(ctx context.Context, q queryfeatures.Query) ([]*models.User, error) {
	const op = "storage.mongodb.users.List"

	cursor, err := r.coll.Find(ctx, activeOnly(q.Filter), q.FindOptions())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	users := make([]*models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// Update применяет частичное обновление к активному пользователю и возвращает новую версию.
func (r *UserRepository) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	const op = "storage.mongodb.users.Update"
	oid, err := objectID(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Photo != nil {
		set["photo"] = *patch.Photo
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if len(set) == 0 {
		return r.findOne(ctx, op, activeOnly(bson.M{"_id": oid}))
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err = r.coll.FindOneAndUpdate(ctx, activeOnly(bson.M{"_id": oid}), bson.M{"$set": set}, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

// Deactivate помечает пользователя неактивным.
func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	const op = "storage.mongodb.users.Deactivate"
	oid, err := objectID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := r.coll.UpdateOne(ctx, activeOnly(bson.M{"_id": oid}), bson.M{"$set": bson.M{"active": false}})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

// Delete удаляет пользователя без учёта флага active.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const op = "storage.mongodb.users.Delete"
	oid, err := objectID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, op string, filter bson.M) (*models.User, error) {
	var u models.User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Cast("_id", id)
	}
	return oid, nil
}
