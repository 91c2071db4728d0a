package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanonicalLabel(t *testing.T) {
	assert.Equal(t, "Spicy", CanonicalLabel("spicy"))
	assert.Equal(t, "Spicy", CanonicalLabel("Spicy"))
	assert.Equal(t, "Dinner party", CanonicalLabel("dinner party"))
	assert.Equal(t, "Éclair", CanonicalLabel("éclair"))
	assert.Equal(t, "", CanonicalLabel(""))

	// Idempotent.
	assert.Equal(t, CanonicalLabel("spicy"), CanonicalLabel(CanonicalLabel("spicy")))
}

func TestPublicVisibilityFilterAdmitsLegacyDocuments(t *testing.T) {
	filter := publicVisibilityFilter()
	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	assert.Contains(t, or, bson.M{"visibility.public": true})
	assert.Contains(t, or, bson.M{"visibility": bson.M{"$exists": false}})
}

func TestSearchFilterCoversAllSearchableFields(t *testing.T) {
	filter := searchFilter("beef (raw)")
	or, ok := filter["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, len(searchableFields))

	for i, field := range searchableFields {
		clause, ok := or[i].(bson.M)
		require.True(t, ok)
		rx, ok := clause[field].(primitive.Regex)
		require.True(t, ok, "field %s", field)
		// Metacharacters in user input are matched literally.
		assert.Equal(t, `beef \(raw\)`, rx.Pattern)
		assert.Equal(t, "i", rx.Options)
	}
}

func TestLabelFilterIsAnchoredAndCaseInsensitive(t *testing.T) {
	filter := labelFilter("Spicy")
	rx, ok := filter["labels"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, "^Spicy$", rx.Pattern)
	assert.Equal(t, "i", rx.Options)
}

func TestAndFilterFlattensSingleCondition(t *testing.T) {
	single := bson.M{"creatorId": "u"}
	assert.Equal(t, single, andFilter(single))

	combined := andFilter(bson.M{"a": 1}, bson.M{"b": 2})
	and, ok := combined["$and"].(bson.A)
	require.True(t, ok)
	assert.Len(t, and, 2)
}

func TestGroupByLabelPipelineShape(t *testing.T) {
	pipeline := groupByLabelPipeline(publicVisibilityFilter())
	require.Len(t, pipeline, 3)

	assert.Equal(t, "$match", pipeline[0][0].Key)
	assert.Equal(t, "$facet", pipeline[1][0].Key)

	facet, ok := pipeline[1][0].Value.(bson.M)
	require.True(t, ok)
	assert.Contains(t, facet, "totalRecipes")
	assert.Contains(t, facet, "labelCounts")

	// Facet order is deterministic: sorted by label ascending.
	counts, ok := facet["labelCounts"].(bson.A)
	require.True(t, ok)
	last, ok := counts[len(counts)-1].(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.M{"label": 1}, last["$sort"])
}
