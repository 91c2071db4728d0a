package recipe

import (
	"regexp"
	"unicode"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// searchableFields are the fields free-text search matches against.
var searchableFields = []string{"name", "recipeAuthor", "ingredients.item"}

// listProjection is the field set returned by listings.
var listProjection = []string{"name", "labels", "image", "ingredients", "timeToCook"}

// CanonicalLabel upper-cases the first code point so that labels group
// consistently. Idempotent.
func CanonicalLabel(label string) string {
	runes := []rune(label)
	if len(runes) == 0 {
		return label
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// publicVisibilityFilter admits public recipes and recipes written before
// the visibility field existed.
func publicVisibilityFilter() bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"visibility.public": true},
		bson.M{"visibility": bson.M{"$exists": false}},
	}}
}

func creatorFilter(creatorID string) bson.M {
	return bson.M{"creatorId": creatorID}
}

// searchFilter matches search as a case-insensitive substring of any
// searchable field.
func searchFilter(search string) bson.M {
	or := make(bson.A, 0, len(searchableFields))
	for _, field := range searchableFields {
		or = append(or, bson.M{field: primitive.Regex{
			Pattern: regexp.QuoteMeta(search),
			Options: "i",
		}})
	}
	return bson.M{"$or": or}
}

// labelFilter matches recipes whose label set contains label, ignoring
// case.
func labelFilter(label string) bson.M {
	return bson.M{"labels": primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(label) + "$",
		Options: "i",
	}}
}

func andFilter(conditions ...bson.M) bson.M {
	if len(conditions) == 1 {
		return conditions[0]
	}
	and := make(bson.A, 0, len(conditions))
	for _, c := range conditions {
		and = append(and, c)
	}
	return bson.M{"$and": and}
}

// capitalizeExpr re-capitalizes the lower-cased group key for display.
var capitalizeExpr = bson.M{"$concat": bson.A{
	bson.M{"$toUpper": bson.M{"$substrCP": bson.A{"$_id", 0, 1}}},
	bson.M{"$substrCP": bson.A{
		"$_id",
		1,
		bson.M{"$subtract": bson.A{bson.M{"$strLenCP": "$_id"}, 1}},
	}},
}}

// groupByLabelPipeline unwinds the label sets of every recipe matching
// filter, groups them case-insensitively and counts per group, alongside
// a total count of the matched recipes. Facets are sorted by label name
// ascending so the output is deterministic.
func groupByLabelPipeline(filter bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$facet", Value: bson.M{
			"totalRecipes": bson.A{
				bson.M{"$count": "total"},
			},
			"labelCounts": bson.A{
				bson.M{"$unwind": "$labels"},
				bson.M{"$group": bson.M{
					"_id":   bson.M{"$toLower": "$labels"},
					"count": bson.M{"$sum": 1},
				}},
				bson.M{"$addFields": bson.M{"label": capitalizeExpr}},
				bson.M{"$project": bson.M{"_id": 0, "label": 1, "count": 1}},
				bson.M{"$sort": bson.M{"label": 1}},
			},
		}}},
		{{Key: "$project", Value: bson.M{
			"totalRecipes": bson.M{"$arrayElemAt": bson.A{"$totalRecipes.total", 0}},
			"labelCounts":  1,
		}}},
	}
}

// popularLabelsPipeline returns the ten most used labels, capitalized.
func popularLabelsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$labels"}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$toLower": "$labels"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: 10}},
		{{Key: "$addFields", Value: bson.M{"capitalizedLabel": capitalizeExpr}}},
		{{Key: "$group", Value: bson.M{
			"_id":    nil,
			"labels": bson.M{"$push": "$capitalizedLabel"},
		}}},
	}
}

// measurementsPipeline collects measurement values used by more than four
// ingredients across the collection.
func measurementsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$unwind", Value: "$ingredients"}},
		{{Key: "$unwind", Value: "$ingredients.measurement"}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$ingredients.measurement",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$match", Value: bson.M{"count": bson.M{"$gt": 4}}}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"measurements": bson.M{"$push": "$_id"},
		}}},
	}
}
