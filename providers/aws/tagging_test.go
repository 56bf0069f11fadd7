package aws

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	taggingtypes "github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaggingAPI struct {
	pages      []*resourcegroupstaggingapi.GetResourcesOutput
	calls      int
	err        error
	gotFilters []string

	tagIn  *resourcegroupstaggingapi.TagResourcesInput
	tagOut *resourcegroupstaggingapi.TagResourcesOutput
	tagErr error
}

func (f *fakeTaggingAPI) GetResources(_ context.Context, in *resourcegroupstaggingapi.GetResourcesInput, _ ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.GetResourcesOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotFilters = in.ResourceTypeFilters
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func (f *fakeTaggingAPI) TagResources(_ context.Context, in *resourcegroupstaggingapi.TagResourcesInput, _ ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.TagResourcesOutput, error) {
	f.tagIn = in
	if f.tagErr != nil {
		return nil, f.tagErr
	}
	if f.tagOut != nil {
		return f.tagOut, nil
	}
	return &resourcegroupstaggingapi.TagResourcesOutput{}, nil
}

func newTestProvider() *Provider {
	return &Provider{region: "ap-southeast-2", logger: zerolog.Nop()}
}

func TestListResources_Paginates(t *testing.T) {
	tagging := &fakeTaggingAPI{pages: []*resourcegroupstaggingapi.GetResourcesOutput{
		{
			PaginationToken: awssdk.String("next"),
			ResourceTagMappingList: []taggingtypes.ResourceTagMapping{
				{
					ResourceARN: awssdk.String("arn:aws:s3:::bucket-a"),
					Tags: []taggingtypes.Tag{
						{Key: awssdk.String("env"), Value: awssdk.String("dev")},
					},
				},
			},
		},
		{
			ResourceTagMappingList: []taggingtypes.ResourceTagMapping{
				{ResourceARN: awssdk.String("arn:aws:s3:::bucket-b")},
			},
		},
	}}

	p := newTestProvider()
	p.tagging = tagging

	resources, err := p.ListResources(context.Background(), []string{"s3", "ec2:instance"})
	require.NoError(t, err)

	assert.Equal(t, 2, tagging.calls)
	assert.Equal(t, []string{"s3", "ec2:instance"}, tagging.gotFilters)
	require.Len(t, resources, 2)
	assert.Equal(t, "arn:aws:s3:::bucket-a", resources[0].ARN)
	require.Len(t, resources[0].Tags, 1)
	assert.Equal(t, "env", resources[0].Tags[0].Key)
	assert.Equal(t, "dev", resources[0].Tags[0].Value)
	assert.Empty(t, resources[1].Tags)
}

func TestListResources_Error(t *testing.T) {
	p := newTestProvider()
	p.tagging = &fakeTaggingAPI{err: errors.New("throttled")}

	_, err := p.ListResources(context.Background(), []string{"s3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get tagged resources")
}

func TestTagResource(t *testing.T) {
	tagging := &fakeTaggingAPI{}
	p := newTestProvider()
	p.tagging = tagging

	err := p.TagResource(context.Background(), "arn:aws:s3:::bucket-a", map[string]string{"nis_managed": "true"})
	require.NoError(t, err)

	require.NotNil(t, tagging.tagIn)
	assert.Equal(t, []string{"arn:aws:s3:::bucket-a"}, tagging.tagIn.ResourceARNList)
	assert.Equal(t, map[string]string{"nis_managed": "true"}, tagging.tagIn.Tags)
}

func TestTagResource_FailedResourceSurfaced(t *testing.T) {
	tagging := &fakeTaggingAPI{tagOut: &resourcegroupstaggingapi.TagResourcesOutput{
		FailedResourcesMap: map[string]taggingtypes.FailureInfo{
			"arn:aws:s3:::bucket-a": {
				ErrorCode:    taggingtypes.ErrorCodeInvalidParameterException,
				ErrorMessage: awssdk.String("bad tag key"),
			},
		},
	}}
	p := newTestProvider()
	p.tagging = tagging

	err := p.TagResource(context.Background(), "arn:aws:s3:::bucket-a", map[string]string{"": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad tag key")
}

func TestTagResource_CallError(t *testing.T) {
	p := newTestProvider()
	p.tagging = &fakeTaggingAPI{tagErr: errors.New("access denied")}

	err := p.TagResource(context.Background(), "arn:aws:s3:::bucket-a", map[string]string{"k": "v"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to tag")
}
