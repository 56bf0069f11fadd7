package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Tag marking a server as managed by CMS; only these servers are started
// or stopped.
const (
	ManagedByKey   = "managed_by"
	ManagedByValue = "CMS"
)

// Server is one EC2 instance in the server inventory.
type Server struct {
	InstanceID      string
	Name            string
	InstanceType    string
	State           string
	Platform        string
	PlatformDetails string
	PrivateIP       string
	PublicIP        string
	LaunchTime      time.Time
	VpcID           string
	SubnetID        string
	SecurityGroups  []string
	KeyName         string
}

// ListServers returns running and stopped instances, optionally filtered
// by platform ("windows" or "linux"). The EC2 platform filter only knows
// windows; linux means instances with no platform attribute.
func (p *Provider) ListServers(ctx context.Context, platform string) ([]Server, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: awssdk.String("instance-state-name"), Values: []string{"running", "stopped"}},
		},
	}
	if platform == "windows" {
		input.Filters = append(input.Filters, ec2types.Filter{
			Name: awssdk.String("platform"), Values: []string{"windows"},
		})
	}

	var servers []Server
	paginator := ec2.NewDescribeInstancesPaginator(p.ec2, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}

		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				if platform == "linux" && string(instance.Platform) != "" {
					continue
				}
				servers = append(servers, convertInstance(instance))
			}
		}
	}

	return servers, nil
}

// StartServers starts stopped CMS-managed instances, optionally narrowed
// to a Name tag. Returns the started instance IDs.
func (p *Provider) StartServers(ctx context.Context, serverName string) ([]string, error) {
	ids, err := p.managedInstanceIDs(ctx, "stopped", serverName)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if _, err := p.ec2.StartInstances(ctx, &ec2.StartInstancesInput{InstanceIds: ids}); err != nil {
		return nil, fmt.Errorf("failed to start instances: %w", err)
	}

	p.logger.Info().Strs("instance_ids", ids).Msg("started instances")
	return ids, nil
}

// StopServers stops running CMS-managed instances, optionally narrowed to
// a Name tag. Returns the stopped instance IDs.
func (p *Provider) StopServers(ctx context.Context, serverName string) ([]string, error) {
	ids, err := p.managedInstanceIDs(ctx, "running", serverName)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if _, err := p.ec2.StopInstances(ctx, &ec2.StopInstancesInput{InstanceIds: ids}); err != nil {
		return nil, fmt.Errorf("failed to stop instances: %w", err)
	}

	p.logger.Info().Strs("instance_ids", ids).Msg("stopped instances")
	return ids, nil
}

// managedInstanceIDs finds CMS-managed instances in the given state.
func (p *Provider) managedInstanceIDs(ctx context.Context, state, serverName string) ([]string, error) {
	filters := []ec2types.Filter{
		{Name: awssdk.String("instance-state-name"), Values: []string{state}},
		{Name: awssdk.String("tag:" + ManagedByKey), Values: []string{ManagedByValue}},
	}
	if serverName != "" {
		filters = append(filters, ec2types.Filter{
			Name: awssdk.String("tag:Name"), Values: []string{serverName},
		})
	}

	var ids []string
	paginator := ec2.NewDescribeInstancesPaginator(p.ec2, &ec2.DescribeInstancesInput{Filters: filters})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				ids = append(ids, awssdk.ToString(instance.InstanceId))
			}
		}
	}

	return ids, nil
}

// convertInstance extracts the inventory fields from an EC2 instance.
func convertInstance(instance ec2types.Instance) Server {
	var name string
	for _, t := range instance.Tags {
		if awssdk.ToString(t.Key) == "Name" {
			name = awssdk.ToString(t.Value)
			break
		}
	}

	var groups []string
	for _, sg := range instance.SecurityGroups {
		groups = append(groups, awssdk.ToString(sg.GroupName))
	}

	platform := string(instance.Platform)
	if platform == "" {
		platform = "linux"
	}

	var state string
	if instance.State != nil {
		state = string(instance.State.Name)
	}

	return Server{
		InstanceID:      awssdk.ToString(instance.InstanceId),
		Name:            name,
		InstanceType:    string(instance.InstanceType),
		State:           state,
		Platform:        platform,
		PlatformDetails: awssdk.ToString(instance.PlatformDetails),
		PrivateIP:       awssdk.ToString(instance.PrivateIpAddress),
		PublicIP:        awssdk.ToString(instance.PublicIpAddress),
		LaunchTime:      awssdk.ToTime(instance.LaunchTime),
		VpcID:           awssdk.ToString(instance.VpcId),
		SubnetID:        awssdk.ToString(instance.SubnetId),
		SecurityGroups:  groups,
		KeyName:         awssdk.ToString(instance.KeyName),
	}
}

// SecurityGroupList renders the group names for reporting.
func (s Server) SecurityGroupList() string {
	return strings.Join(s.SecurityGroups, ", ")
}
