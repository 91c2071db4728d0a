package recipe

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"recipe-api/domain"
	"recipe-api/entities"
)

const collectionName = "recipes"

type (
	// Session is a scoped database session. Every exit path must call End;
	// Abort after a successful Commit is a no-op for callers because they
	// only abort on error paths.
	Session interface {
		StartTransaction() error
		Commit(ctx context.Context) error
		Abort(ctx context.Context) error
		End(ctx context.Context)
		// Context binds the session to a request context so reads and
		// writes issued with it join the session's transaction.
		Context(ctx context.Context) context.Context
	}

	RecipeStore interface {
		StartSession(ctx context.Context) (Session, error)
		FindMany(ctx context.Context, filter bson.M, fields []string) ([]entities.Recipe, error)
		// FindByID returns (nil, nil) when no document matches and
		// domain.ErrInvalidID when the id is not a valid object id.
		FindByID(ctx context.Context, id string) (*entities.Recipe, error)
		Create(ctx context.Context, recipe *entities.Recipe) error
		Update(ctx context.Context, existing *entities.Recipe, data *entities.Recipe) (*entities.Recipe, error)
		Aggregate(ctx context.Context, pipeline mongo.Pipeline, results any) error
		EnsureIndexes(ctx context.Context) error
	}

	recipeStore struct {
		client *mongo.Client
		col    *mongo.Collection
		logger *zap.Logger
	}

	mongoSession struct {
		sess mongo.Session
	}
)

func NewRecipeStore(client *mongo.Client, database string, logger *zap.Logger) RecipeStore {
	return &recipeStore{
		client: client,
		col:    client.Database(database).Collection(collectionName),
		logger: logger,
	}
}

func (s *recipeStore) StartSession(ctx context.Context) (Session, error) {
	sess, err := s.client.StartSession()
	if err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	return &mongoSession{sess: sess}, nil
}

func (s *recipeStore) FindMany(ctx context.Context, filter bson.M, fields []string) ([]entities.Recipe, error) {
	opts := options.Find()
	if len(fields) > 0 {
		projection := bson.M{}
		for _, field := range fields {
			projection[field] = 1
		}
		opts.SetProjection(projection)
	}

	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	var recipes []entities.Recipe
	if err := cur.All(ctx, &recipes); err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	return recipes, nil
}

func (s *recipeStore) FindByID(ctx context.Context, id string) (*entities.Recipe, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var recipe entities.Recipe
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&recipe)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	return &recipe, nil
}

func (s *recipeStore) Create(ctx context.Context, recipe *entities.Recipe) error {
	if recipe.ID.IsZero() {
		recipe.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	if err := recipe.Validate(); err != nil {
		return domain.NewPersistenceError(err)
	}

	s.logger.Debug("creating recipe", zap.String("recipeId", recipe.ID.Hex()))
	if _, err := s.col.InsertOne(ctx, recipe); err != nil {
		return domain.NewPersistenceError(err)
	}
	return nil
}

// Update replaces the mutable fields of an existing document. CreatorID
// and CreatedAt are never touched.
func (s *recipeStore) Update(ctx context.Context, existing *entities.Recipe, data *entities.Recipe) (*entities.Recipe, error) {
	updated := *existing
	updated.Name = data.Name
	updated.Description = data.Description
	updated.Cuisine = data.Cuisine
	updated.Difficulty = data.Difficulty
	updated.Portions = data.Portions
	updated.Vegan = data.Vegan
	updated.Vegetarian = data.Vegetarian
	updated.Steps = data.Steps
	updated.Ingredients = data.Ingredients
	updated.Nutrition = data.Nutrition
	updated.TimeToCook = data.TimeToCook
	updated.Labels = data.Labels
	updated.Image = data.Image
	updated.RecipeAuthor = data.RecipeAuthor
	updated.Visibility = data.Visibility
	updated.UpdatedAt = time.Now().UTC()

	if err := updated.Validate(); err != nil {
		return nil, domain.NewPersistenceError(err)
	}

	if _, err := s.col.ReplaceOne(ctx, bson.M{"_id": existing.ID}, &updated); err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	return &updated, nil
}

func (s *recipeStore) Aggregate(ctx context.Context, pipeline mongo.Pipeline, results any) error {
	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	if err := cur.All(ctx, results); err != nil {
		return domain.NewPersistenceError(err)
	}
	return nil
}

func (s *recipeStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "recipeAuthor", Value: 1}}},
		{Keys: bson.D{{Key: "labels", Value: 1}}},
		{Keys: bson.D{{Key: "creatorId", Value: 1}}},
	})
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	return nil
}

func (m *mongoSession) StartTransaction() error {
	return m.sess.StartTransaction()
}

func (m *mongoSession) Commit(ctx context.Context) error {
	return m.sess.CommitTransaction(ctx)
}

func (m *mongoSession) Abort(ctx context.Context) error {
	return m.sess.AbortTransaction(ctx)
}

func (m *mongoSession) End(ctx context.Context) {
	m.sess.EndSession(ctx)
}

func (m *mongoSession) Context(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, m.sess)
}
