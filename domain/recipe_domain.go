package domain

var (
	MessageSuccessGetRecipes      = "success get recipes"
	MessageSuccessGetRecipeDetail = "success get recipe detail"
	MessageSuccessCreateRecipe    = "recipe created successfully"
	MessageSuccessUpdateRecipe    = "recipe updated successfully"
	MessageSuccessGetLabels       = "success get labels"
	MessageSuccessGetMeasurements = "success get measurements"

	MessageFailedGetRecipes      = "failed to get recipes"
	MessageFailedGetRecipeDetail = "failed to get recipe detail"
	MessageFailedCreateRecipe    = "failed to create recipe"
	MessageFailedUpdateRecipe    = "failed to update recipe"
	MessageFailedGetLabels       = "failed to get labels"
	MessageFailedGetMeasurements = "failed to get measurements"
	MessageFailedBodyRequest     = "failed to process request body"
)

type (
	// CreateRecipeRequest is the JSON part of the multipart mutation
	// payload. The same shape is used for create and update.
	CreateRecipeRequest struct {
		RecipeName        string                  `json:"recipeName" validate:"required"`
		RecipeDescription string                  `json:"recipeDescription" validate:"required"`
		Vegetarian        bool                    `json:"vegetarian"`
		Vegan             bool                    `json:"vegan"`
		Difficulty        string                  `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
		Cuisine           string                  `json:"cuisine" validate:"required"`
		PrepTime          int                     `json:"prepTime" validate:"required,min=1"`
		CookTime          int                     `json:"cookTime" validate:"required,min=1"`
		Steps             []RecipeStepInput       `json:"steps" validate:"required,min=1,dive"`
		Ingredients       []RecipeIngredientInput `json:"ingredients" validate:"required,min=1,dive"`
		NutritionFacts    *NutritionInput         `json:"nutritionFacts"`
		Labels            []string                `json:"labels" validate:"dive,min=1"`
		Visibility        string                  `json:"visibility" validate:"required,oneof=public private"`
		PortionSize       int                     `json:"portionSize" validate:"required,min=1"`
	}

	RecipeStepInput struct {
		Step string `json:"step" validate:"required"`
	}

	RecipeIngredientInput struct {
		Item        string  `json:"item" validate:"required"`
		Measurement string  `json:"measurement" validate:"required"`
		Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	}

	NutritionInput struct {
		Kcal      *float64 `json:"kcal"`
		Sugars    *float64 `json:"sugars"`
		Salt      *float64 `json:"salt"`
		Carbs     *float64 `json:"carbs"`
		Protein   *float64 `json:"protein"`
		Fat       *float64 `json:"fat"`
		Saturates *float64 `json:"saturates"`
		Fibre     *float64 `json:"fibre"`
	}

	// RecipeImage is the binary file part of the mutation payload.
	RecipeImage struct {
		Data             []byte
		ContentType      string
		OriginalFilename string
	}

	// LabelFacet is a single aggregated label count. Produced transiently
	// by the query engine, never persisted.
	LabelFacet struct {
		Label string `bson:"label" json:"label"`
		Count int    `bson:"count" json:"count"`
	}

	// LabelFacetSet is one facet aggregation result: the counts plus the
	// total number of recipes matched by the same filter.
	LabelFacetSet struct {
		TotalRecipes int          `bson:"totalRecipes" json:"totalRecipes"`
		Labels       []LabelFacet `bson:"labelCounts" json:"labels"`
	}
)
