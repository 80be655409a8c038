package noteRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notewise/database"
	"notewise/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoNoteRepo implements NoteRepository using MongoDB.
type MongoNoteRepo struct {
	notes      *mongo.Collection
	categories *mongo.Collection
	templates  *mongo.Collection
}

// NewMongoNoteRepo creates a new instance of NoteRepository using MongoDB.
func NewMongoNoteRepo() NoteRepository {
	db := database.MongoClient.Database("notewise")
	repo := &MongoNoteRepo{
		notes:      db.Collection("notes"),
		categories: db.Collection("categories"),
		templates:  db.Collection("templates"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoNoteRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "categoryId", Value: 1}}},
		{Keys: bson.D{{Key: "reminder.nextDueDate", Value: 1}}},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
	}

	if _, err := r.notes.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	_, err := r.templates.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// sortSpec maps a ListFilter.Sort value to a Mongo sort document. Unknown or
// empty values fall back to most-recently-updated first.
func sortSpec(sort string) bson.D {
	switch sort {
	case SortUpdatedAsc:
		return bson.D{{Key: "updatedAt", Value: 1}}
	case SortCreatedDesc:
		return bson.D{{Key: "createdAt", Value: -1}}
	case SortCreatedAsc:
		return bson.D{{Key: "createdAt", Value: 1}}
	case SortTitleAsc:
		return bson.D{{Key: "title", Value: 1}}
	case SortTitleDesc:
		return bson.D{{Key: "title", Value: -1}}
	default:
		return bson.D{{Key: "updatedAt", Value: -1}}
	}
}

func (r *MongoNoteRepo) Create(ctx context.Context, note *models.Note) error {
	if _, err := r.notes.InsertOne(ctx, note); err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (r *MongoNoteRepo) Update(ctx context.Context, note *models.Note) error {
	res, err := r.notes.ReplaceOne(ctx, bson.M{"id": note.ID}, note)
	if err != nil {
		return fmt.Errorf("failed to update note %s: %w", note.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("note %s not found", note.ID)
	}
	return nil
}

func (r *MongoNoteRepo) GetByID(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := r.notes.FindOne(ctx, bson.M{"id": id}).Decode(&note); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch note %s: %w", id, err)
	}
	return &note, nil
}

func (r *MongoNoteRepo) List(ctx context.Context, filter ListFilter) ([]models.Note, error) {
	query := bson.M{}
	if filter.Trash {
		query["deletedAt"] = bson.M{"$ne": nil}
	} else {
		query["deletedAt"] = nil
	}
	if filter.CategoryID != "" {
		query["categoryId"] = filter.CategoryID
	}
	if filter.FavoritesOnly {
		query["isFavorite"] = true
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: filter.Search, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
		}
	}

	opts := options.Find().SetSort(sortSpec(filter.Sort))
	cursor, err := r.notes.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer cursor.Close(ctx)

	var notes []models.Note
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	return notes, nil
}

func (r *MongoNoteRepo) ListWithReminders(ctx context.Context) ([]models.Note, error) {
	query := bson.M{"deletedAt": nil, "reminder": bson.M{"$ne": nil}}
	cursor, err := r.notes.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes with reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var notes []models.Note
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	return notes, nil
}

func (r *MongoNoteRepo) ReplaceReminder(ctx context.Context, noteID string, rem *models.Reminder, updatedAt int64) error {
	update := bson.M{"$set": bson.M{"reminder": rem, "updatedAt": updatedAt}}
	res, err := r.notes.UpdateOne(ctx, bson.M{"id": noteID}, update)
	if err != nil {
		return fmt.Errorf("failed to replace reminder on note %s: %w", noteID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("note %s not found", noteID)
	}
	return nil
}

func (r *MongoNoteRepo) SoftDelete(ctx context.Context, id string, deletedAt int64) error {
	update := bson.M{"$set": bson.M{"deletedAt": deletedAt, "updatedAt": deletedAt}}
	res, err := r.notes.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to trash note %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("note %s not found", id)
	}
	return nil
}

func (r *MongoNoteRepo) Restore(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"deletedAt": nil}}
	res, err := r.notes.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to restore note %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("note %s not found", id)
	}
	return nil
}

func (r *MongoNoteRepo) Purge(ctx context.Context, id string) error {
	if _, err := r.notes.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("failed to purge note %s: %w", id, err)
	}
	return nil
}

func (r *MongoNoteRepo) PurgeTrash(ctx context.Context) (int64, error) {
	res, err := r.notes.DeleteMany(ctx, bson.M{"deletedAt": bson.M{"$ne": nil}})
	if err != nil {
		return 0, fmt.Errorf("failed to empty trash: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoNoteRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	if _, err := r.categories.InsertOne(ctx, cat); err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *MongoNoteRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	cursor, err := r.categories.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var cats []models.Category
	if err := cursor.All(ctx, &cats); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return cats, nil
}

func (r *MongoNoteRepo) DeleteCategory(ctx context.Context, id string) error {
	if _, err := r.categories.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("failed to delete category %s: %w", id, err)
	}
	// Notes keep working without their category; detach them.
	_, err := r.notes.UpdateMany(ctx, bson.M{"categoryId": id}, bson.M{"$set": bson.M{"categoryId": ""}})
	if err != nil {
		return fmt.Errorf("failed to detach notes from category %s: %w", id, err)
	}
	return nil
}

func (r *MongoNoteRepo) SaveTemplate(ctx context.Context, tpl *models.Template) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.templates.ReplaceOne(ctx, bson.M{"id": tpl.ID}, tpl, opts); err != nil {
		return fmt.Errorf("failed to save template %s: %w", tpl.ID, err)
	}
	return nil
}

func (r *MongoNoteRepo) GetTemplateByID(ctx context.Context, id string) (*models.Template, error) {
	var tpl models.Template
	if err := r.templates.FindOne(ctx, bson.M{"id": id}).Decode(&tpl); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch template %s: %w", id, err)
	}
	return &tpl, nil
}

func (r *MongoNoteRepo) ListTemplates(ctx context.Context) ([]models.Template, error) {
	opts := options.Find().SetSort(bson.D{{Key: "title", Value: 1}})
	cursor, err := r.templates.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer cursor.Close(ctx)

	var tpls []models.Template
	if err := cursor.All(ctx, &tpls); err != nil {
		return nil, fmt.Errorf("failed to decode templates: %w", err)
	}
	return tpls, nil
}

func (r *MongoNoteRepo) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := r.templates.DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}
	return nil
}
