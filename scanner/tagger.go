package scanner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lzops/lzops/types"
)

// Marker tag applied to matched resources.
const (
	ManagedTagKey   = "nis_managed"
	ManagedTagValue = "true"
)

// ResourceTagger applies tags to a resource by ARN.
type ResourceTagger interface {
	TagResource(ctx context.Context, arn string, tags map[string]string) error
}

// TagStats summarizes a marker-tagging pass.
type TagStats struct {
	Succeeded int
	Failed    int
	Errors    []string
}

// MarkManaged tags every matched resource with the managed marker.
// Resources already carrying the key count as succeeded and are not
// re-tagged. Per-resource failures are recorded and never abort the pass.
func MarkManaged(ctx context.Context, tagger ResourceTagger, matches []types.Match, logger zerolog.Logger) TagStats {
	var stats TagStats

	logger.Info().Int("resources", len(matches)).Msg("applying managed marker tag")

	for _, m := range matches {
		if _, ok := m.Tags[ManagedTagKey]; ok {
			logger.Debug().Str("arn", m.ARN).Msg("already tagged")
			stats.Succeeded++
			continue
		}

		if err := tagger.TagResource(ctx, m.ARN, map[string]string{ManagedTagKey: ManagedTagValue}); err != nil {
			logger.Warn().Err(err).Str("arn", m.ARN).Msg("failed to tag resource")
			stats.Failed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", m.ARN, err))
			continue
		}

		logger.Debug().Str("arn", m.ARN).Msg("tagged")
		stats.Succeeded++
	}

	logger.Info().
		Int("succeeded", stats.Succeeded).
		Int("failed", stats.Failed).
		Msg("tagging complete")
	return stats
}
