package aws

import (
	"context"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	route53types "github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/lzops/lzops/types"
)

// Route53ZoneLister lists hosted zones with their tags. Hosted zones are
// invisible to the tagging API query, so they are scanned directly.
// Implements scanner.DirectLister.
type Route53ZoneLister struct {
	p *Provider
}

// Route53Zones returns the direct lister for Route53 hosted zones.
func (p *Provider) Route53Zones() *Route53ZoneLister {
	return &Route53ZoneLister{p: p}
}

// Key returns the catalog service key.
func (l *Route53ZoneLister) Key() string { return "route53" }

// List returns hosted zones with tags fetched per zone. A zone whose tags
// cannot be fetched is skipped, not fatal.
func (l *Route53ZoneLister) List(ctx context.Context) ([]types.Resource, error) {
	var resources []types.Resource

	paginator := route53.NewListHostedZonesPaginator(l.p.route53, &route53.ListHostedZonesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list hosted zones: %w", err)
		}

		for _, zone := range page.HostedZones {
			zoneID := strings.TrimPrefix(awssdk.ToString(zone.Id), "/hostedzone/")

			tagsOut, err := l.p.route53.ListTagsForResource(ctx, &route53.ListTagsForResourceInput{
				ResourceType: route53types.TagResourceTypeHostedzone,
				ResourceId:   awssdk.String(zoneID),
			})
			if err != nil {
				l.p.logger.Debug().Err(err).Str("zone_id", zoneID).Msg("failed to fetch hosted zone tags, skipping")
				continue
			}

			var tags []types.Tag
			if tagsOut.ResourceTagSet != nil {
				for _, t := range tagsOut.ResourceTagSet.Tags {
					tags = append(tags, types.Tag{
						Key:   awssdk.ToString(t.Key),
						Value: awssdk.ToString(t.Value),
					})
				}
			}

			resources = append(resources, types.Resource{
				ARN:  fmt.Sprintf("arn:aws:route53:::hostedzone/%s", zoneID),
				Type: "route53:hostedzone",
				Tags: tags,
			})
		}
	}

	return resources, nil
}
