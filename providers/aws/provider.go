// Package aws implements resource listing, tagging and lifecycle
// operations against the AWS APIs for one landing zone.
package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/resourcegroupstaggingapi"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog"
)

// taggingClient is the Resource Groups Tagging API surface the provider
// uses.
type taggingClient interface {
	resourcegroupstaggingapi.GetResourcesAPIClient
	TagResources(ctx context.Context, params *resourcegroupstaggingapi.TagResourcesInput, optFns ...func(*resourcegroupstaggingapi.Options)) (*resourcegroupstaggingapi.TagResourcesOutput, error)
}

// iamClient is the IAM surface the provider uses.
type iamClient interface {
	iam.ListRolesAPIClient
}

// route53Client is the Route53 surface the provider uses.
type route53Client interface {
	route53.ListHostedZonesAPIClient
	ListTagsForResource(ctx context.Context, params *route53.ListTagsForResourceInput, optFns ...func(*route53.Options)) (*route53.ListTagsForResourceOutput, error)
}

// ec2Client is the EC2 surface the provider uses.
type ec2Client interface {
	ec2.DescribeInstancesAPIClient
	ec2.DescribeSnapshotsAPIClient
	ec2.DescribeImagesAPIClient
	DeregisterImage(ctx context.Context, params *ec2.DeregisterImageInput, optFns ...func(*ec2.Options)) (*ec2.DeregisterImageOutput, error)
	DeleteSnapshot(ctx context.Context, params *ec2.DeleteSnapshotInput, optFns ...func(*ec2.Options)) (*ec2.DeleteSnapshotOutput, error)
	StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
}

// ssmClient is the SSM surface the provider uses.
type ssmClient interface {
	SendCommand(ctx context.Context, params *ssm.SendCommandInput, optFns ...func(*ssm.Options)) (*ssm.SendCommandOutput, error)
	GetCommandInvocation(ctx context.Context, params *ssm.GetCommandInvocationInput, optFns ...func(*ssm.Options)) (*ssm.GetCommandInvocationOutput, error)
}

// Provider holds the service clients for one landing zone account.
type Provider struct {
	tagging taggingClient
	iam     iamClient
	route53 route53Client
	ec2     ec2Client
	ssm     ssmClient
	region  string
	logger  zerolog.Logger
}

// NewProvider builds a Provider from an assumed-role config.
func NewProvider(cfg awssdk.Config, logger zerolog.Logger) *Provider {
	return &Provider{
		tagging: resourcegroupstaggingapi.NewFromConfig(cfg),
		iam:     iam.NewFromConfig(cfg),
		route53: route53.NewFromConfig(cfg),
		ec2:     ec2.NewFromConfig(cfg),
		ssm:     ssm.NewFromConfig(cfg),
		region:  cfg.Region,
		logger:  logger,
	}
}

// Region returns the region the provider operates in.
func (p *Provider) Region() string {
	return p.region
}
