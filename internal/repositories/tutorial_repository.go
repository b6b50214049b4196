package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/codeverse/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CollectionProvider hands out the tutorials collection, or ErrUnavailable when the database cannot be reached
type CollectionProvider interface {
	Collection(ctx context.Context) (*mongo.Collection, error)
}

// listProjection is the fixed field set returned by GetAll
var listProjection = bson.D{
	{Key: "_id", Value: 1},
	{Key: "title", Value: 1},
	{Key: "description", Value: 1},
	{Key: "level", Value: 1},
	{Key: "duration", Value: 1},
	{Key: "language", Value: 1},
	{Key: "content", Value: 1},
}

// flexString decodes any scalar BSON value into text.
// Documents written by hand often carry numbers ("duration": 30) or nulls where the application writes strings.
type flexString string

// UnmarshalBSONValue implements bson.ValueUnmarshaler
func (s *flexString) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*s = flexString(raw.StringValue())
	case bsontype.Int32:
		*s = flexString(strconv.FormatInt(int64(raw.Int32()), 10))
	case bsontype.Int64:
		*s = flexString(strconv.FormatInt(raw.Int64(), 10))
	case bsontype.Double:
		*s = flexString(strconv.FormatFloat(raw.Double(), 'f', -1, 64))
	case bsontype.Null, bsontype.Undefined:
		*s = ""
	default:
		return fmt.Errorf("cannot decode %s into a string", t)
	}
	return nil
}

// tutorialDocument is the MongoDB shape of a tutorial
type tutorialDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       flexString         `bson:"title"`
	Description flexString         `bson:"description"`
	Level       flexString         `bson:"level"`
	Duration    flexString         `bson:"duration"`
	Language    flexString         `bson:"language"`
	Content     flexString         `bson:"content"`
	CreatedAt   *time.Time         `bson:"createdAt,omitempty"`
	LastUpdated *time.Time         `bson:"lastUpdated,omitempty"`
}

func (d *tutorialDocument) toModel() models.Tutorial {
	return models.Tutorial{
		ID:          d.ID.Hex(),
		Title:       string(d.Title),
		Description: string(d.Description),
		Level:       string(d.Level),
		Duration:    string(d.Duration),
		Language:    string(d.Language),
		Content:     string(d.Content),
		CreatedAt:   d.CreatedAt,
		LastUpdated: d.LastUpdated,
	}
}

func documentFromModel(t *models.Tutorial) tutorialDocument {
	return tutorialDocument{
		Title:       flexString(t.Title),
		Description: flexString(t.Description),
		Level:       flexString(t.Level),
		Duration:    flexString(t.Duration),
		Language:    flexString(t.Language),
		Content:     flexString(t.Content),
		CreatedAt:   t.CreatedAt,
		LastUpdated: t.LastUpdated,
	}
}

type tutorialRepository struct {
	provider CollectionProvider
	timeout  time.Duration
	logger   *zap.Logger
}

// NewTutorialRepository creates a new tutorial repository.
// Every operation runs with the given timeout on top of the caller's context.
func NewTutorialRepository(provider CollectionProvider, timeout time.Duration, logger *zap.Logger) *tutorialRepository {
	return &tutorialRepository{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// collection returns the collection together with a context bounded by the operation timeout
func (r *tutorialRepository) collection(ctx context.Context) (*mongo.Collection, context.Context, context.CancelFunc, error) {
	coll, err := r.provider.Collection(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if r.timeout <= 0 {
		ctx, cancel := context.WithCancel(ctx)
		return coll, ctx, cancel, nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return coll, ctx, cancel, nil
}

// parseID converts a tutorial id into an ObjectID. A malformed id is a failed query, not a missing document.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid id %q: %w", models.ErrQueryFailed, id, err)
	}
	return oid, nil
}

// GetAll retrieves every tutorial with the list projection applied
func (r *tutorialRepository) GetAll(ctx context.Context) ([]models.Tutorial, error) {
	return r.find(ctx, options.Find().SetProjection(listProjection))
}

// Export retrieves every tutorial with all of its fields
func (r *tutorialRepository) Export(ctx context.Context) ([]models.Tutorial, error) {
	return r.find(ctx, options.Find())
}

func (r *tutorialRepository) find(ctx context.Context, opts *options.FindOptions) ([]models.Tutorial, error) {
	coll, ctx, cancel, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	cursor, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		r.logger.Error("failed to query tutorials", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to query tutorials: %w", models.ErrQueryFailed, err)
	}
	defer cursor.Close(ctx)

	var docs []tutorialDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("failed to decode tutorials", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to decode tutorials: %w", models.ErrQueryFailed, err)
	}

	tutorials := make([]models.Tutorial, 0, len(docs))
	for i := range docs {
		tutorials = append(tutorials, docs[i].toModel())
	}
	return tutorials, nil
}

// GetByID retrieves a tutorial by its id
func (r *tutorialRepository) GetByID(ctx context.Context, id string) (*models.Tutorial, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	coll, ctx, cancel, err := r.collection(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var doc tutorialDocument
	err = coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to query tutorial by id", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("%w: failed to query tutorial: %w", models.ErrQueryFailed, err)
	}

	tutorial := doc.toModel()
	return &tutorial, nil
}

// Create inserts a tutorial and returns the id assigned by the database
func (r *tutorialRepository) Create(ctx context.Context, tutorial *models.Tutorial) (string, error) {
	coll, ctx, cancel, err := r.collection(ctx)
	if err != nil {
		return "", err
	}
	defer cancel()

	result, err := coll.InsertOne(ctx, documentFromModel(tutorial))
	if err != nil {
		r.logger.Error("failed to insert tutorial", zap.Error(err))
		return "", fmt.Errorf("%w: failed to insert tutorial: %w", models.ErrQueryFailed, err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("%w: unexpected inserted id type %T", models.ErrQueryFailed, result.InsertedID)
	}
	return oid.Hex(), nil
}

// Update overwrites the editable fields of an existing tutorial.
// Returns false if no document has the given id, nothing is inserted in that case.
func (r *tutorialRepository) Update(ctx context.Context, id string, tutorial *models.Tutorial) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}

	coll, ctx, cancel, err := r.collection(ctx)
	if err != nil {
		return false, err
	}
	defer cancel()

	fields := bson.M{
		"title":       tutorial.Title,
		"description": tutorial.Description,
		"level":       tutorial.Level,
		"duration":    tutorial.Duration,
		"language":    tutorial.Language,
		"content":     tutorial.Content,
	}
	if tutorial.LastUpdated != nil {
		fields["lastUpdated"] = *tutorial.LastUpdated
	}

	result, err := coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		r.logger.Error("failed to update tutorial", zap.Error(err), zap.String("id", id))
		return false, fmt.Errorf("%w: failed to update tutorial: %w", models.ErrQueryFailed, err)
	}
	return result.MatchedCount > 0, nil
}

// Delete removes a tutorial by its id and reports whether a document was removed
func (r *tutorialRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}

	coll, ctx, cancel, err := r.collection(ctx)
	if err != nil {
		return false, err
	}
	defer cancel()

	result, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("failed to delete tutorial", zap.Error(err), zap.String("id", id))
		return false, fmt.Errorf("%w: failed to delete tutorial: %w", models.ErrQueryFailed, err)
	}
	return result.DeletedCount > 0, nil
}
