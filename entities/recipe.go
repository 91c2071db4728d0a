package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

type Recipe struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description" json:"description"`
	Cuisine      string             `bson:"cuisine" json:"cuisine"`
	Difficulty   string             `bson:"difficulty" json:"difficulty"`
	Portions     string             `bson:"portions" json:"portions"`
	Vegan        bool               `bson:"vegan" json:"vegan"`
	Vegetarian   bool               `bson:"vegetarian" json:"vegetarian"`
	Steps        []string           `bson:"steps" json:"steps"`
	Ingredients  []Ingredient       `bson:"ingredients" json:"ingredients"`
	Nutrition    *Nutrition         `bson:"nutrition,omitempty" json:"nutrition,omitempty"`
	TimeToCook   TimeToCook         `bson:"timeToCook" json:"timeToCook"`
	Labels       []string           `bson:"labels" json:"labels"`
	Image        Image              `bson:"image" json:"image"`
	CreatorID    string             `bson:"creatorId" json:"creatorId"`
	RecipeAuthor string             `bson:"recipeAuthor" json:"recipeAuthor"`
	Visibility   *Visibility        `bson:"visibility,omitempty" json:"visibility,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Ingredient struct {
	Item        string  `bson:"item" json:"item"`
	Measurement string  `bson:"measurement" json:"measurement"`
	Quantity    float64 `bson:"quantity" json:"quantity"`
}

type Nutrition struct {
	Kcal      *float64 `bson:"kcal,omitempty" json:"kcal,omitempty"`
	Sugars    *float64 `bson:"sugars,omitempty" json:"sugars,omitempty"`
	Salt      *float64 `bson:"salt,omitempty" json:"salt,omitempty"`
	Carbs     *float64 `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Protein   *float64 `bson:"protein,omitempty" json:"protein,omitempty"`
	Fat       *float64 `bson:"fat,omitempty" json:"fat,omitempty"`
	Saturates *float64 `bson:"saturates,omitempty" json:"saturates,omitempty"`
	Fibre     *float64 `bson:"fibre,omitempty" json:"fibre,omitempty"`
}

// TimeToCook stores prep and cook minutes; the totals are derived, not
// persisted.
type TimeToCook struct {
	Prep int `bson:"prep"`
	Cook int `bson:"cook"`
}

func (t TimeToCook) TotalMinutes() int { return t.Prep + t.Cook }

func (t TimeToCook) TotalHours() float64 { return float64(t.Prep+t.Cook) / 60 }

// TotalTime renders the total as hours when it is an hour or more,
// otherwise as minutes, rounded to two decimals with trailing zeros
// trimmed ("13 mins", "1.33 hrs").
func (t TimeToCook) TotalTime() string {
	hours := t.TotalHours()
	if hours >= 1 {
		return formatRounded(hours) + " hrs"
	}
	return formatRounded(float64(t.TotalMinutes())) + " mins"
}

func formatRounded(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func (t TimeToCook) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Prep         int     `json:"prep"`
		Cook         int     `json:"cook"`
		TotalMinutes int     `json:"totalMinutes"`
		TotalHours   float64 `json:"totalHours"`
		TotalTime    string  `json:"totalTime"`
	}{
		Prep:         t.Prep,
		Cook:         t.Cook,
		TotalMinutes: t.TotalMinutes(),
		TotalHours:   t.TotalHours(),
		TotalTime:    t.TotalTime(),
	})
}

type Image struct {
	SourceURL        string `bson:"sourceUrl" json:"sourceUrl"`
	ContentType      string `bson:"contentType" json:"contentType"`
	OriginalFilename string `bson:"originalFilename" json:"originalFilename"`
	StorageKey       string `bson:"storageKey" json:"storageKey"`
}

// Visibility controls who can list a recipe. A document without the field
// is treated as public. Groups is reserved.
type Visibility struct {
	Public  bool     `bson:"public" json:"public"`
	Private bool     `bson:"private" json:"private"`
	Groups  []string `bson:"groups" json:"groups"`
}

// IsPublic applies the absent-means-public default.
func (r *Recipe) IsPublic() bool {
	return r.Visibility == nil || r.Visibility.Public
}

// Validate is the server-side schema check applied right before a write,
// after the request DTO has already been validated.
func (r *Recipe) Validate() error {
	if r.Name == "" {
		return errors.New("recipe name is required")
	}
	if r.Description == "" {
		return errors.New("recipe description is required")
	}
	if r.Cuisine == "" {
		return errors.New("cuisine is required")
	}
	if r.Portions == "" {
		return errors.New("portions is required")
	}
	switch r.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("difficulty must be one of Easy, Medium or Hard, got %q", r.Difficulty)
	}
	if r.TimeToCook.Prep < 1 || r.TimeToCook.Cook < 1 {
		return errors.New("prep and cook time must be at least 1 minute")
	}
	if len(r.Steps) == 0 {
		return errors.New("at least one step is required")
	}
	if len(r.Ingredients) == 0 {
		return errors.New("at least one ingredient is required")
	}
	for _, ing := range r.Ingredients {
		if ing.Item == "" || ing.Measurement == "" {
			return errors.New("ingredient item and measurement are required")
		}
		if ing.Quantity <= 0 {
			return fmt.Errorf("ingredient %q quantity must be greater than zero", ing.Item)
		}
	}
	if r.CreatorID == "" {
		return errors.New("creatorId is required")
	}
	if r.RecipeAuthor == "" {
		return errors.New("recipeAuthor is required")
	}
	if r.Image.StorageKey == "" || r.Image.SourceURL == "" {
		return errors.New("image storage key and source url must be set before the document is written")
	}
	return nil
}
