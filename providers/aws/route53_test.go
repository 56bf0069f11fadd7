package aws

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	route53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoute53 struct {
	zones    []route53types.HostedZone
	listErr  error
	tags     map[string][]route53types.Tag
	tagsFail map[string]error
}

func (f *fakeRoute53) ListHostedZones(_ context.Context, _ *route53.ListHostedZonesInput, _ ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &route53.ListHostedZonesOutput{HostedZones: f.zones}, nil
}

func (f *fakeRoute53) ListTagsForResource(_ context.Context, in *route53.ListTagsForResourceInput, _ ...func(*route53.Options)) (*route53.ListTagsForResourceOutput, error) {
	id := awssdk.ToString(in.ResourceId)
	if err := f.tagsFail[id]; err != nil {
		return nil, err
	}
	return &route53.ListTagsForResourceOutput{
		ResourceTagSet: &route53types.ResourceTagSet{Tags: f.tags[id]},
	}, nil
}

func TestRoute53Zones_List(t *testing.T) {
	p := newTestProvider()
	p.route53 = &fakeRoute53{
		zones: []route53types.HostedZone{
			{Id: awssdk.String("/hostedzone/Z1ABC"), Name: awssdk.String("example.com.")},
			{Id: awssdk.String("/hostedzone/Z2DEF"), Name: awssdk.String("internal.example.com.")},
		},
		tags: map[string][]route53types.Tag{
			"Z1ABC": {{Key: awssdk.String("team"), Value: awssdk.String("platform")}},
		},
	}

	resources, err := p.Route53Zones().List(context.Background())
	require.NoError(t, err)

	require.Len(t, resources, 2)
	assert.Equal(t, "arn:aws:route53:::hostedzone/Z1ABC", resources[0].ARN)
	assert.Equal(t, "route53:hostedzone", resources[0].Type)
	require.Len(t, resources[0].Tags, 1)
	assert.Equal(t, "team", resources[0].Tags[0].Key)
	assert.Empty(t, resources[1].Tags)
}

func TestRoute53Zones_List_TagFetchFailureSkipsZone(t *testing.T) {
	p := newTestProvider()
	p.route53 = &fakeRoute53{
		zones: []route53types.HostedZone{
			{Id: awssdk.String("/hostedzone/Z1ABC")},
			{Id: awssdk.String("/hostedzone/Z2DEF")},
		},
		tagsFail: map[string]error{"Z1ABC": errors.New("throttled")},
	}

	resources, err := p.Route53Zones().List(context.Background())
	require.NoError(t, err)

	require.Len(t, resources, 1)
	assert.Equal(t, "arn:aws:route53:::hostedzone/Z2DEF", resources[0].ARN)
}

func TestRoute53Zones_ListError(t *testing.T) {
	p := newTestProvider()
	p.route53 = &fakeRoute53{listErr: errors.New("access denied")}

	_, err := p.Route53Zones().List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list hosted zones")
}

func TestRoute53Zones_Key(t *testing.T) {
	assert.Equal(t, "route53", newTestProvider().Route53Zones().Key())
}
