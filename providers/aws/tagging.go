package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"

	"github.com/lzops/lzops/types"
)

// ListResources discovers tagged resources of the given types through the
// Resource Groups Tagging API. Implements scanner.TaggedLister.
func (p *Provider) ListResources(ctx context.Context, resourceTypes []string) ([]types.Resource, error) {
	var resources []types.Resource

	paginator := resourcegroupstaggingapi.NewGetResourcesPaginator(p.tagging, &resourcegroupstaggingapi.GetResourcesInput{
		ResourceTypeFilters: resourceTypes,
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get tagged resources: %w", err)
		}

		p.logger.Debug().Int("resources", len(page.ResourceTagMappingList)).Msg("processing tagging API page")

		for _, mapping := range page.ResourceTagMappingList {
			resources = append(resources, types.Resource{
				ARN:  awssdk.ToString(mapping.ResourceARN),
				Tags: convertTags(mapping.Tags),
			})
		}
	}

	return resources, nil
}

// TagResource applies tags to one resource by ARN. Implements
// scanner.ResourceTagger. Failures reported per-ARN in the response are
// surfaced as errors.
func (p *Provider) TagResource(ctx context.Context, arn string, tags map[string]string) error {
	out, err := p.tagging.TagResources(ctx, &resourcegroupstaggingapi.TagResourcesInput{
		ResourceARNList: []string{arn},
		Tags:            tags,
	})
	if err != nil {
		return fmt.Errorf("failed to tag %s: %w", arn, err)
	}

	if info, ok := out.FailedResourcesMap[arn]; ok {
		return fmt.Errorf("failed to tag %s: %s: %s",
			arn, string(info.ErrorCode), awssdk.ToString(info.ErrorMessage))
	}

	return nil
}

// convertTags maps tagging API tags to the internal tag type.
func convertTags(tags []taggingtypes.Tag) []types.Tag {
	out := make([]types.Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, types.Tag{
			Key:   awssdk.ToString(t.Key),
			Value: awssdk.ToString(t.Value),
		})
	}
	return out
}
