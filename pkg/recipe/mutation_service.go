package recipe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"recipe-api/domain"
	"recipe-api/entities"
	"recipe-api/internal/utils"
	"recipe-api/internal/utils/storage"
)

type (
	// MutationService is the recipe write pipeline. A recipe always
	// carries exactly one image, and a write is durable only once both
	// the document and the image exist: the document insert happens in a
	// transaction that is committed strictly after the object-storage put
	// succeeds.
	MutationService interface {
		Create(ctx context.Context, principal domain.Principal, req domain.CreateRecipeRequest, image *domain.RecipeImage) (*entities.Recipe, error)
		Update(ctx context.Context, principal domain.Principal, recipeID string, req domain.CreateRecipeRequest, image *domain.RecipeImage) (*entities.Recipe, error)
	}

	mutationService struct {
		store     RecipeStore
		s3        storage.AwsS3
		validator *validator.Validate
		logger    *zap.Logger
	}
)

func NewMutationService(store RecipeStore, s3 storage.AwsS3, validator *validator.Validate, logger *zap.Logger) MutationService {
	return &mutationService{
		store:     store,
		s3:        s3,
		validator: validator,
		logger:    logger,
	}
}

// ImageStorageKey derives the object-storage key for a recipe image from
// the recipe id and the sanitized original filename. The key is stable
// across revisions of the same recipe.
func ImageStorageKey(recipeID, originalFilename string) string {
	name := strings.ReplaceAll(strings.ToLower(originalFilename), " ", "_")
	return fmt.Sprintf("images/%s-%s", recipeID, name)
}

func (s *mutationService) Create(ctx context.Context, principal domain.Principal, req domain.CreateRecipeRequest, image *domain.RecipeImage) (*entities.Recipe, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, domain.NewValidationError(utils.ValidationDetail(err))
	}
	if image == nil || len(image.Data) == 0 {
		return nil, domain.ErrMissingAsset
	}

	doc := buildRecipeDocument(&req, principal)
	doc.ID = primitive.NewObjectID()
	s.attachImage(doc, image)

	sess, err := s.store.StartSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.End(context.WithoutCancel(ctx))

	sc := sess.Context(ctx)
	if err := sess.StartTransaction(); err != nil {
		return nil, domain.NewPersistenceError(err)
	}

	if err := s.store.Create(sc, doc); err != nil {
		s.abort(ctx, sess)
		return nil, err
	}
	if err := s.uploadImage(sc, doc, image, principal); err != nil {
		// Nothing reached object storage, aborting leaves no trace.
		s.abort(ctx, sess)
		return nil, err
	}
	if err := sess.Commit(sc); err != nil {
		// The object is already durable but the document is not. No
		// synchronous compensating delete; the key is logged for
		// out-of-band reconciliation.
		s.logger.Error("transaction commit failed after image upload, object orphaned",
			zap.String("recipeId", doc.ID.Hex()),
			zap.String("storageKey", doc.Image.StorageKey),
			zap.Error(err),
		)
		return nil, domain.NewPersistenceError(err)
	}

	return doc, nil
}

func (s *mutationService) Update(ctx context.Context, principal domain.Principal, recipeID string, req domain.CreateRecipeRequest, image *domain.RecipeImage) (*entities.Recipe, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, domain.NewValidationError(utils.ValidationDetail(err))
	}
	if image == nil || len(image.Data) == 0 {
		return nil, domain.ErrMissingAsset
	}

	sess, err := s.store.StartSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.End(context.WithoutCancel(ctx))

	sc := sess.Context(ctx)
	if err := sess.StartTransaction(); err != nil {
		return nil, domain.NewPersistenceError(err)
	}

	existing, err := s.store.FindByID(sc, recipeID)
	if err != nil {
		s.abort(ctx, sess)
		return nil, err
	}
	// Existence before ownership, both before any mutation.
	if existing == nil {
		s.abort(ctx, sess)
		return nil, domain.ErrNotFound
	}
	if existing.CreatorID != principal.SubjectID {
		s.abort(ctx, sess)
		s.logger.Warn("unauthorized recipe update",
			zap.String("recipeId", recipeID),
			zap.String("userId", principal.SubjectID),
		)
		return nil, domain.ErrForbidden
	}

	data := buildRecipeDocument(&req, principal)
	data.ID = existing.ID
	s.attachImage(data, image)

	updated, err := s.store.Update(sc, existing, data)
	if err != nil {
		s.abort(ctx, sess)
		return nil, err
	}
	if err := s.uploadImage(sc, updated, image, principal); err != nil {
		s.abort(ctx, sess)
		return nil, err
	}
	if err := sess.Commit(sc); err != nil {
		s.logger.Error("transaction commit failed after image upload, object orphaned",
			zap.String("recipeId", updated.ID.Hex()),
			zap.String("storageKey", updated.Image.StorageKey),
			zap.Error(err),
		)
		return nil, domain.NewPersistenceError(err)
	}

	return updated, nil
}

func (s *mutationService) attachImage(doc *entities.Recipe, image *domain.RecipeImage) {
	key := ImageStorageKey(doc.ID.Hex(), image.OriginalFilename)
	doc.Image = entities.Image{
		SourceURL:        s.s3.GetPublicLinkKey(key),
		ContentType:      image.ContentType,
		OriginalFilename: image.OriginalFilename,
		StorageKey:       key,
	}
}

// uploadImage issues the object-storage put. A failed put is terminal for
// the request; it is never retried here.
func (s *mutationService) uploadImage(ctx context.Context, doc *entities.Recipe, image *domain.RecipeImage, principal domain.Principal) error {
	_, err := s.s3.UploadFile(ctx, doc.Image.StorageKey, image.Data, image.ContentType, map[string]string{
		"originalname": image.OriginalFilename,
		"userId":       principal.SubjectID,
		"recipeId":     doc.ID.Hex(),
	})
	if err != nil {
		s.logger.Debug("error uploading image", zap.String("storageKey", doc.Image.StorageKey), zap.Error(err))
		return domain.NewAssetUploadError(err)
	}
	return nil
}

func (s *mutationService) abort(ctx context.Context, sess Session) {
	if err := sess.Abort(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("failed to abort transaction", zap.Error(err))
	}
}

func buildRecipeDocument(req *domain.CreateRecipeRequest, principal domain.Principal) *entities.Recipe {
	steps := make([]string, 0, len(req.Steps))
	for _, step := range req.Steps {
		steps = append(steps, step.Step)
	}

	ingredients := make([]entities.Ingredient, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		ingredients = append(ingredients, entities.Ingredient{
			Item:        ing.Item,
			Measurement: ing.Measurement,
			Quantity:    ing.Quantity,
		})
	}

	labels := make([]string, 0, len(req.Labels))
	for _, label := range req.Labels {
		labels = append(labels, CanonicalLabel(label))
	}

	var nutrition *entities.Nutrition
	if req.NutritionFacts != nil {
		nutrition = &entities.Nutrition{
			Kcal:      req.NutritionFacts.Kcal,
			Sugars:    req.NutritionFacts.Sugars,
			Salt:      req.NutritionFacts.Salt,
			Carbs:     req.NutritionFacts.Carbs,
			Protein:   req.NutritionFacts.Protein,
			Fat:       req.NutritionFacts.Fat,
			Saturates: req.NutritionFacts.Saturates,
			Fibre:     req.NutritionFacts.Fibre,
		}
	}

	return &entities.Recipe{
		Name:        req.RecipeName,
		Description: req.RecipeDescription,
		Cuisine:     req.Cuisine,
		Difficulty:  req.Difficulty,
		Portions:    strconv.Itoa(req.PortionSize),
		Vegan:       req.Vegan,
		Vegetarian:  req.Vegetarian,
		Steps:       steps,
		Ingredients: ingredients,
		Nutrition:   nutrition,
		TimeToCook: entities.TimeToCook{
			Prep: req.PrepTime,
			Cook: req.CookTime,
		},
		Labels:       labels,
		CreatorID:    principal.SubjectID,
		RecipeAuthor: principal.DisplayName,
		Visibility: &entities.Visibility{
			Public:  req.Visibility == "public",
			Private: req.Visibility == "private",
			Groups:  []string{},
		},
	}
}
