package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"recipe-api/domain"
	"recipe-api/entities"
	"recipe-api/internal/utils"
)

type fakeSession struct {
	started   bool
	committed bool
	aborted   bool
	ended     bool
	commitErr error
}

func (f *fakeSession) StartTransaction() error { f.started = true; return nil }

func (f *fakeSession) Commit(context.Context) error { f.committed = true; return f.commitErr }

func (f *fakeSession) Abort(context.Context) error { f.aborted = true; return nil }

func (f *fakeSession) End(context.Context) { f.ended = true }

func (f *fakeSession) Context(ctx context.Context) context.Context { return ctx }

type fakeStore struct {
	session  *fakeSession
	sessions int

	byID    map[string]*entities.Recipe
	created []*entities.Recipe
	updated []*entities.Recipe

	findManyFilter bson.M
	findManyResult []entities.Recipe

	createErr    error
	aggregateFn  func(pipeline mongo.Pipeline, results any) error
	aggregations []mongo.Pipeline
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		session: &fakeSession{},
		byID:    map[string]*entities.Recipe{},
	}
}

func (f *fakeStore) StartSession(context.Context) (Session, error) {
	f.sessions++
	return f.session, nil
}

func (f *fakeStore) FindMany(_ context.Context, filter bson.M, _ []string) ([]entities.Recipe, error) {
	f.findManyFilter = filter
	return f.findManyResult, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*entities.Recipe, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, domain.ErrInvalidID
	}
	return f.byID[id], nil
}

func (f *fakeStore) Create(_ context.Context, recipe *entities.Recipe) error {
	if f.createErr != nil {
		return f.createErr
	}
	now := time.Now().UTC()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now
	if err := recipe.Validate(); err != nil {
		return domain.NewPersistenceError(err)
	}
	f.created = append(f.created, recipe)
	return nil
}

func (f *fakeStore) Update(_ context.Context, existing *entities.Recipe, data *entities.Recipe) (*entities.Recipe, error) {
	updated := *data
	updated.ID = existing.ID
	updated.CreatorID = existing.CreatorID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	if err := updated.Validate(); err != nil {
		return nil, domain.NewPersistenceError(err)
	}
	f.updated = append(f.updated, &updated)
	return &updated, nil
}

func (f *fakeStore) Aggregate(_ context.Context, pipeline mongo.Pipeline, results any) error {
	f.aggregations = append(f.aggregations, pipeline)
	if f.aggregateFn != nil {
		return f.aggregateFn(pipeline, results)
	}
	return nil
}

func (f *fakeStore) EnsureIndexes(context.Context) error { return nil }

type fakeS3 struct {
	uploads   []fakeUpload
	uploadErr error
}

type fakeUpload struct {
	key         string
	contentType string
	metadata    map[string]string
	size        int
}

func (f *fakeS3) UploadFile(_ context.Context, objectKey string, file []byte, contentType string, metadata map[string]string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, fakeUpload{
		key:         objectKey,
		contentType: contentType,
		metadata:    metadata,
		size:        len(file),
	})
	return "https://cdn.example.com/" + objectKey, nil
}

func (f *fakeS3) GetPublicLinkKey(objectKey string) string {
	return "https://cdn.example.com/" + objectKey
}

func (f *fakeS3) GetObjectKeyFromLink(link string) string { return link }

func testPrincipal() domain.Principal {
	return domain.Principal{
		SubjectID:   "user-1",
		DisplayName: "Chef One",
		Username:    "chef.one",
	}
}

func validRequest() domain.CreateRecipeRequest {
	return domain.CreateRecipeRequest{
		RecipeName:        "Beef Rendang",
		RecipeDescription: "Slow cooked beef",
		Difficulty:        "Hard",
		Cuisine:           "Indonesian",
		PrepTime:          30,
		CookTime:          180,
		Steps:             []domain.RecipeStepInput{{Step: "cook slowly"}},
		Ingredients: []domain.RecipeIngredientInput{
			{Item: "beef", Measurement: "grams", Quantity: 500},
		},
		Labels:      []string{"spicy", "Dinner"},
		Visibility:  "public",
		PortionSize: 4,
	}
}

func testImage() *domain.RecipeImage {
	return &domain.RecipeImage{
		Data:             []byte("fake image bytes"),
		ContentType:      "image/jpeg",
		OriginalFilename: "My Rendang Photo.JPG",
	}
}

func newTestMutationService(store *fakeStore, s3 *fakeS3) MutationService {
	utils.InitValidator()
	return NewMutationService(store, s3, utils.Validate, zap.NewNop())
}

func TestImageStorageKey(t *testing.T) {
	key := ImageStorageKey("abc123", "My Rendang Photo.JPG")
	assert.Equal(t, "images/abc123-my_rendang_photo.jpg", key)

	// Stable for the same inputs.
	assert.Equal(t, key, ImageStorageKey("abc123", "My Rendang Photo.JPG"))
}

func TestCreateRecipe(t *testing.T) {
	store := newFakeStore()
	s3 := &fakeS3{}
	svc := newTestMutationService(store, s3)

	created, err := svc.Create(context.Background(), testPrincipal(), validRequest(), testImage())
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.False(t, created.ID.IsZero())
	assert.Equal(t, "user-1", created.CreatorID)
	assert.Equal(t, "Chef One", created.RecipeAuthor)
	assert.Equal(t, "4", created.Portions)
	assert.Equal(t, []string{"Spicy", "Dinner"}, created.Labels)
	require.NotNil(t, created.Visibility)
	assert.True(t, created.Visibility.Public)

	wantKey := ImageStorageKey(created.ID.Hex(), "My Rendang Photo.JPG")
	assert.Equal(t, wantKey, created.Image.StorageKey)
	assert.Equal(t, "https://cdn.example.com/"+wantKey, created.Image.SourceURL)

	require.Len(t, s3.uploads, 1)
	assert.Equal(t, wantKey, s3.uploads[0].key)
	assert.Equal(t, "image/jpeg", s3.uploads[0].contentType)
	assert.Equal(t, "user-1", s3.uploads[0].metadata["userId"])
	assert.Equal(t, created.ID.Hex(), s3.uploads[0].metadata["recipeId"])

	assert.True(t, store.session.committed)
	assert.False(t, store.session.aborted)
	assert.True(t, store.session.ended)
	require.Len(t, store.created, 1)
}

func TestCreateRecipeValidationFailsBeforeAnyWrite(t *testing.T) {
	store := newFakeStore()
	s3 := &fakeS3{}
	svc := newTestMutationService(store, s3)

	req := validRequest()
	req.Difficulty = "Impossible"

	_, err := svc.Create(context.Background(), testPrincipal(), req, testImage())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	var serviceErr *domain.Error
	require.ErrorAs(t, err, &serviceErr)
	assert.Contains(t, serviceErr.Detail, "difficulty")

	assert.Zero(t, store.sessions)
	assert.Empty(t, s3.uploads)
}

func TestCreateRecipeRejectsMissingImage(t *testing.T) {
	store := newFakeStore()
	svc := newTestMutationService(store, &fakeS3{})

	_, err := svc.Create(context.Background(), testPrincipal(), validRequest(), nil)
	assert.ErrorIs(t, err, domain.ErrMissingAsset)

	_, err = svc.Create(context.Background(), testPrincipal(), validRequest(), &domain.RecipeImage{OriginalFilename: "x.jpg"})
	assert.ErrorIs(t, err, domain.ErrMissingAsset)

	assert.Zero(t, store.sessions)
}

func TestCreateRecipeAbortsWhenUploadFails(t *testing.T) {
	store := newFakeStore()
	s3 := &fakeS3{uploadErr: errors.New("bucket unavailable")}
	svc := newTestMutationService(store, s3)

	_, err := svc.Create(context.Background(), testPrincipal(), validRequest(), testImage())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAssetUpload)

	assert.True(t, store.session.aborted)
	assert.False(t, store.session.committed)
	assert.True(t, store.session.ended)
}

func TestCreateRecipeCommitFailureAfterUpload(t *testing.T) {
	store := newFakeStore()
	store.session.commitErr = errors.New("commit lost quorum")
	s3 := &fakeS3{}
	svc := newTestMutationService(store, s3)

	_, err := svc.Create(context.Background(), testPrincipal(), validRequest(), testImage())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistence)

	// The object made it to storage before the commit failed.
	assert.Len(t, s3.uploads, 1)
	assert.False(t, store.session.aborted)
	assert.True(t, store.session.ended)
}

func TestUpdateRecipeNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestMutationService(store, &fakeS3{})

	missingID := primitive.NewObjectID().Hex()
	_, err := svc.Update(context.Background(), testPrincipal(), missingID, validRequest(), testImage())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.True(t, store.session.aborted)
}

func TestUpdateRecipeForbiddenForNonOwner(t *testing.T) {
	store := newFakeStore()
	existingID := primitive.NewObjectID()
	store.byID[existingID.Hex()] = &entities.Recipe{ID: existingID, CreatorID: "someone-else"}
	svc := newTestMutationService(store, &fakeS3{})

	_, err := svc.Update(context.Background(), testPrincipal(), existingID.Hex(), validRequest(), testImage())
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.True(t, store.session.aborted)
	assert.Empty(t, store.updated)
}

func TestUpdateRecipeInvalidID(t *testing.T) {
	store := newFakeStore()
	svc := newTestMutationService(store, &fakeS3{})

	_, err := svc.Update(context.Background(), testPrincipal(), "not-a-hex-id", validRequest(), testImage())
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestUpdateRecipeKeepsIdentityAndStorageKey(t *testing.T) {
	store := newFakeStore()
	existingID := primitive.NewObjectID()
	store.byID[existingID.Hex()] = &entities.Recipe{
		ID:        existingID,
		CreatorID: "user-1",
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	s3 := &fakeS3{}
	svc := newTestMutationService(store, s3)

	updated, err := svc.Update(context.Background(), testPrincipal(), existingID.Hex(), validRequest(), testImage())
	require.NoError(t, err)

	assert.Equal(t, existingID, updated.ID)
	assert.Equal(t, "user-1", updated.CreatorID)
	assert.Equal(t, 2024, updated.CreatedAt.Year())

	// The storage key derives from the recipe id, so a revision overwrites
	// the previous object instead of leaking a new one.
	wantKey := ImageStorageKey(existingID.Hex(), "My Rendang Photo.JPG")
	assert.Equal(t, wantKey, updated.Image.StorageKey)
	require.Len(t, s3.uploads, 1)
	assert.Equal(t, wantKey, s3.uploads[0].key)
	assert.True(t, store.session.committed)
}
