// Package scanner walks discovered resources through the rule catalog and
// collects the ones that match.
package scanner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lzops/lzops/arn"
	"github.com/lzops/lzops/match"
	"github.com/lzops/lzops/rules"
	"github.com/lzops/lzops/types"
)

// TaggedLister lists resources of the given types through a bulk tagging
// query.
type TaggedLister interface {
	ListResources(ctx context.Context, resourceTypes []string) ([]types.Resource, error)
}

// DirectLister lists resources of a single service through its own API.
type DirectLister interface {
	// Key is the catalog service key this lister serves.
	Key() string
	List(ctx context.Context) ([]types.Resource, error)
}

// Scanner matches discovered resources against the rule catalog.
type Scanner struct {
	catalog *rules.Catalog
	tagged  TaggedLister
	direct  []DirectLister
	logger  zerolog.Logger
}

// New builds a Scanner. The tagged lister is required; direct listers are
// optional extras for services the tagging query cannot see.
func New(catalog *rules.Catalog, tagged TaggedLister, direct []DirectLister, logger zerolog.Logger) *Scanner {
	return &Scanner{
		catalog: catalog,
		tagged:  tagged,
		direct:  direct,
		logger:  logger,
	}
}

// Scan lists and matches all resources. Resources that cannot be
// classified or have no rule set are skipped, never fatal. A failing
// direct lister logs a warning and the scan continues; only the bulk
// tagging query failing aborts the scan.
func (s *Scanner) Scan(ctx context.Context) ([]types.Match, error) {
	resourceTypes := s.catalog.TaggingResourceTypes()
	s.logger.Info().Int("resource_types", len(resourceTypes)).Msg("starting scan")

	resources, err := s.tagged.ListResources(ctx, resourceTypes)
	if err != nil {
		return nil, fmt.Errorf("tagging query failed: %w", err)
	}

	matched := s.matchResources(resources)

	for _, dl := range s.direct {
		svc, ok := s.catalog.ByResourceType(serviceTypeForKey(s.catalog, dl.Key()))
		if !ok {
			s.logger.Debug().Str("service", dl.Key()).Msg("no catalog entry for direct lister")
			continue
		}
		s.logger.Info().Str("service", dl.Key()).Msg("scanning via direct API")

		directResources, err := dl.List(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Str("service", dl.Key()).Msg("direct scan failed")
			continue
		}
		matcher := match.NewMatcher(svc.Rules)
		for _, r := range directResources {
			if matcher.Matches(r.Tags) {
				matched = append(matched, types.Match{ARN: r.ARN, Tags: types.TagMap(r.Tags)})
			}
		}
	}

	s.logger.Info().
		Int("total", len(resources)).
		Int("matched", len(matched)).
		Msg("scan complete")
	return matched, nil
}

// matchResources classifies and matches resources from the tagging query.
func (s *Scanner) matchResources(resources []types.Resource) []types.Match {
	var matched []types.Match
	for _, r := range resources {
		token := arn.Classify(r.ARN, r.Type)
		svc, ok := s.catalog.ByResourceType(token)
		if !ok {
			s.logger.Debug().Str("arn", r.ARN).Str("type", token).Msg("unknown resource type, skipping")
			continue
		}

		matcher := match.NewMatcher(svc.Rules)
		if !matcher.Matches(r.Tags) {
			s.logger.Debug().Str("arn", r.ARN).Msg("filtered out by tag rules")
			continue
		}

		matched = append(matched, types.Match{ARN: r.ARN, Tags: types.TagMap(r.Tags)})
		s.logger.Info().Str("arn", r.ARN).Msg("matched")
	}
	return matched
}

// serviceTypeForKey finds the resource type registered for a service key.
func serviceTypeForKey(catalog *rules.Catalog, key string) string {
	for _, svc := range catalog.Services() {
		if svc.Key == key {
			return svc.ResourceType
		}
	}
	return ""
}
