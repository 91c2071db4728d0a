package recipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"recipe-api/domain"
	"recipe-api/entities"
)

func facetRows(set domain.LabelFacetSet) func(mongo.Pipeline, any) error {
	return func(_ mongo.Pipeline, results any) error {
		rows, ok := results.(*[]domain.LabelFacetSet)
		if ok {
			*rows = []domain.LabelFacetSet{set}
		}
		return nil
	}
}

func TestSearchAppliesVisibilityScope(t *testing.T) {
	store := newFakeStore()
	store.aggregateFn = facetRows(domain.LabelFacetSet{TotalRecipes: 2})
	svc := NewQueryService(store, zap.NewNop())

	result, err := svc.Search(context.Background(), "", "")
	require.NoError(t, err)
	require.NotNil(t, result)

	// No search and no label leaves the bare visibility scope as filter.
	assert.Equal(t, publicVisibilityFilter(), store.findManyFilter)
	assert.NotNil(t, result.Recipes)
	assert.Empty(t, result.Recipes)
}

func TestSearchCombinesSearchAndLabelFilters(t *testing.T) {
	store := newFakeStore()
	store.aggregateFn = facetRows(domain.LabelFacetSet{})
	svc := NewQueryService(store, zap.NewNop())

	_, err := svc.Search(context.Background(), "rendang", "Spicy")
	require.NoError(t, err)

	want := andFilter(
		andFilter(publicVisibilityFilter(), searchFilter("rendang")),
		labelFilter("Spicy"),
	)
	assert.Equal(t, want, store.findManyFilter)

	// One facet aggregation without the label constraint, one for the bare
	// scope.
	require.Len(t, store.aggregations, 2)
}

func TestSearchTreatsAllAsNoLabelFilter(t *testing.T) {
	store := newFakeStore()
	store.aggregateFn = facetRows(domain.LabelFacetSet{})
	svc := NewQueryService(store, zap.NewNop())

	for _, label := range []string{"all", "All", "ALL"} {
		_, err := svc.Search(context.Background(), "", label)
		require.NoError(t, err)
		assert.Equal(t, publicVisibilityFilter(), store.findManyFilter, "label %q", label)
	}
}

func TestSearchMineScopesToCreator(t *testing.T) {
	store := newFakeStore()
	store.aggregateFn = facetRows(domain.LabelFacetSet{})
	svc := NewQueryService(store, zap.NewNop())

	_, err := svc.SearchMine(context.Background(), testPrincipal(), "", "")
	require.NoError(t, err)
	assert.Equal(t, bson.M{"creatorId": "user-1"}, store.findManyFilter)
}

func TestSearchDefaultsEmptyFacets(t *testing.T) {
	store := newFakeStore()
	svc := NewQueryService(store, zap.NewNop())

	result, err := svc.Search(context.Background(), "", "")
	require.NoError(t, err)
	assert.Zero(t, result.Labels.TotalRecipes)
	assert.NotNil(t, result.Labels.Labels)
	assert.NotNil(t, result.AllLabels.Labels)
}

func TestGetByID(t *testing.T) {
	store := newFakeStore()
	existing := &entities.Recipe{Name: "Beef Rendang"}
	id := "65f000000000000000000001"
	store.byID[id] = existing
	svc := NewQueryService(store, zap.NewNop())

	found, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, existing, found)

	_, err = svc.GetByID(context.Background(), "65f000000000000000000002")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestPopularLabelsEmptyCollection(t *testing.T) {
	store := newFakeStore()
	svc := NewQueryService(store, zap.NewNop())

	labels, err := svc.PopularLabels(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, labels)
	assert.Empty(t, labels)
}

func TestMeasurements(t *testing.T) {
	store := newFakeStore()
	store.aggregateFn = func(_ mongo.Pipeline, results any) error {
		rows, ok := results.(*[]struct {
			Measurements []string `bson:"measurements"`
		})
		if ok {
			*rows = append(*rows, struct {
				Measurements []string `bson:"measurements"`
			}{Measurements: []string{"grams", "ml"}})
		}
		return nil
	}
	svc := NewQueryService(store, zap.NewNop())

	measurements, err := svc.Measurements(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"grams", "ml"}, measurements)
}
