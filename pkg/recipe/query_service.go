package recipe

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"recipe-api/domain"
	"recipe-api/entities"
)

// labelSentinelAll disables label filtering when passed as the label
// parameter, compared case-insensitively.
const labelSentinelAll = "all"

type (
	// SearchResult carries the matched recipes plus two facet sets:
	// Labels reflects the current filter minus the label constraint
	// itself, AllLabels reflects the scope without search or label, so a
	// caller can render "N of M" counts in one round trip.
	SearchResult struct {
		Recipes   []entities.Recipe    `json:"recipes"`
		Labels    domain.LabelFacetSet `json:"labels"`
		AllLabels domain.LabelFacetSet `json:"allLabels"`
	}

	// QueryService is the read side: faceted search and the label and
	// measurement aggregations. All operations are read-only and run
	// inside a session for isolation with concurrent mutations, but
	// never open a write transaction.
	QueryService interface {
		Search(ctx context.Context, search, label string) (*SearchResult, error)
		SearchMine(ctx context.Context, principal domain.Principal, search, label string) (*SearchResult, error)
		GetByID(ctx context.Context, id string) (*entities.Recipe, error)
		Labels(ctx context.Context) (domain.LabelFacetSet, error)
		PopularLabels(ctx context.Context) ([]string, error)
		Measurements(ctx context.Context) ([]string, error)
	}

	queryService struct {
		store  RecipeStore
		logger *zap.Logger
	}
)

func NewQueryService(store RecipeStore, logger *zap.Logger) QueryService {
	return &queryService{store: store, logger: logger}
}

func (s *queryService) Search(ctx context.Context, search, label string) (*SearchResult, error) {
	return s.search(ctx, publicVisibilityFilter(), search, label)
}

func (s *queryService) SearchMine(ctx context.Context, principal domain.Principal, search, label string) (*SearchResult, error) {
	return s.search(ctx, creatorFilter(principal.SubjectID), search, label)
}

func (s *queryService) search(ctx context.Context, scope bson.M, search, label string) (*SearchResult, error) {
	sess, err := s.store.StartSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.End(context.WithoutCancel(ctx))
	sc := sess.Context(ctx)

	base := scope
	if search != "" {
		base = andFilter(scope, searchFilter(search))
	}
	full := base
	if label != "" && !strings.EqualFold(label, labelSentinelAll) {
		full = andFilter(base, labelFilter(label))
	}

	recipes, err := s.store.FindMany(sc, full, listProjection)
	if err != nil {
		s.logger.Error("error retrieving recipes", zap.Error(err))
		return nil, err
	}

	// Facets minus the label constraint, so the selected label's own
	// count stays visible next to its siblings.
	matching, err := s.labelFacets(sc, base)
	if err != nil {
		return nil, err
	}
	all, err := s.labelFacets(sc, scope)
	if err != nil {
		return nil, err
	}

	if recipes == nil {
		recipes = []entities.Recipe{}
	}
	return &SearchResult{
		Recipes:   recipes,
		Labels:    matching,
		AllLabels: all,
	}, nil
}

func (s *queryService) GetByID(ctx context.Context, id string) (*entities.Recipe, error) {
	recipe, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, domain.ErrNotFound
	}
	return recipe, nil
}

func (s *queryService) Labels(ctx context.Context) (domain.LabelFacetSet, error) {
	return s.labelFacets(ctx, publicVisibilityFilter())
}

func (s *queryService) PopularLabels(ctx context.Context) ([]string, error) {
	var rows []struct {
		Labels []string `bson:"labels"`
	}
	if err := s.store.Aggregate(ctx, popularLabelsPipeline(), &rows); err != nil {
		s.logger.Error("error retrieving popular labels", zap.Error(err))
		return nil, err
	}
	if len(rows) == 0 {
		return []string{}, nil
	}
	return rows[0].Labels, nil
}

func (s *queryService) Measurements(ctx context.Context) ([]string, error) {
	var rows []struct {
		Measurements []string `bson:"measurements"`
	}
	if err := s.store.Aggregate(ctx, measurementsPipeline(), &rows); err != nil {
		s.logger.Error("error retrieving measurements", zap.Error(err))
		return nil, err
	}
	if len(rows) == 0 {
		return []string{}, nil
	}
	return rows[0].Measurements, nil
}

func (s *queryService) labelFacets(ctx context.Context, filter bson.M) (domain.LabelFacetSet, error) {
	var rows []domain.LabelFacetSet
	if err := s.store.Aggregate(ctx, groupByLabelPipeline(filter), &rows); err != nil {
		s.logger.Error("error aggregating label facets", zap.Error(err))
		return domain.LabelFacetSet{}, err
	}
	if len(rows) == 0 {
		return domain.LabelFacetSet{Labels: []domain.LabelFacet{}}, nil
	}
	set := rows[0]
	if set.Labels == nil {
		set.Labels = []domain.LabelFacet{}
	}
	return set, nil
}
