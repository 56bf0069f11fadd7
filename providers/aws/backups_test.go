package aws

import (
	"context"
	"errors"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotsPage(snaps ...ec2types.Snapshot) *ec2.DescribeSnapshotsOutput {
	return &ec2.DescribeSnapshotsOutput{Snapshots: snaps}
}

func TestListOldSnapshots(t *testing.T) {
	now := time.Now().UTC()
	p := newTestProvider()
	p.ec2 = &fakeEC2{describeSnapshots: func(in *ec2.DescribeSnapshotsInput) (*ec2.DescribeSnapshotsOutput, error) {
		assert.Equal(t, []string{"self"}, in.OwnerIds)
		return snapshotsPage(
			ec2types.Snapshot{
				SnapshotId: awssdk.String("snap-old"),
				StartTime:  awssdk.Time(now.Add(-60 * 24 * time.Hour)),
				Tags: []ec2types.Tag{
					{Key: awssdk.String("Name"), Value: awssdk.String("db-backup")},
				},
			},
			ec2types.Snapshot{
				SnapshotId: awssdk.String("snap-fresh"),
				StartTime:  awssdk.Time(now.Add(-1 * 24 * time.Hour)),
			},
		), nil
	}}

	old, err := p.ListOldSnapshots(context.Background(), 31*24*time.Hour)
	require.NoError(t, err)

	require.Len(t, old, 1)
	assert.Equal(t, "snap-old", old[0].ID)
	assert.Equal(t, map[string]string{"Name": "db-backup"}, old[0].Tags)
}

func TestListOldSnapshots_Error(t *testing.T) {
	p := newTestProvider()
	p.ec2 = &fakeEC2{describeSnapshots: func(_ *ec2.DescribeSnapshotsInput) (*ec2.DescribeSnapshotsOutput, error) {
		return nil, errors.New("throttled")
	}}

	_, err := p.ListOldSnapshots(context.Background(), time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list snapshots")
}

func TestCleanupOldBackups(t *testing.T) {
	now := time.Now().UTC()
	var deregistered, deleted []string

	p := newTestProvider()
	p.ec2 = &fakeEC2{
		describeImages: func(in *ec2.DescribeImagesInput) (*ec2.DescribeImagesOutput, error) {
			assert.Equal(t, []string{"self"}, in.Owners)
			return &ec2.DescribeImagesOutput{Images: []ec2types.Image{
				{ImageId: awssdk.String("ami-old"), CreationDate: awssdk.String(now.Add(-90 * 24 * time.Hour).Format(time.RFC3339))},
				{ImageId: awssdk.String("ami-fresh"), CreationDate: awssdk.String(now.Format(time.RFC3339))},
				{ImageId: awssdk.String("ami-baddate"), CreationDate: awssdk.String("not-a-date")},
			}}, nil
		},
		describeSnapshots: func(_ *ec2.DescribeSnapshotsInput) (*ec2.DescribeSnapshotsOutput, error) {
			return snapshotsPage(
				ec2types.Snapshot{SnapshotId: awssdk.String("snap-old"), StartTime: awssdk.Time(now.Add(-90 * 24 * time.Hour))},
				ec2types.Snapshot{SnapshotId: awssdk.String("snap-fresh"), StartTime: awssdk.Time(now)},
			), nil
		},
		deregisterImage: func(in *ec2.DeregisterImageInput) (*ec2.DeregisterImageOutput, error) {
			deregistered = append(deregistered, awssdk.ToString(in.ImageId))
			return &ec2.DeregisterImageOutput{}, nil
		},
		deleteSnapshot: func(in *ec2.DeleteSnapshotInput) (*ec2.DeleteSnapshotOutput, error) {
			deleted = append(deleted, awssdk.ToString(in.SnapshotId))
			return &ec2.DeleteSnapshotOutput{}, nil
		},
	}

	stats, err := p.CleanupOldBackups(context.Background(), 31*24*time.Hour, false)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.AMIs)
	assert.Equal(t, 1, stats.Snapshots)
	assert.Equal(t, []string{"ami-old"}, deregistered)
	assert.Equal(t, []string{"snap-old"}, deleted)
}

func TestCleanupOldBackups_DryRun(t *testing.T) {
	now := time.Now().UTC()
	mutated := false

	p := newTestProvider()
	p.ec2 = &fakeEC2{
		describeImages: func(_ *ec2.DescribeImagesInput) (*ec2.DescribeImagesOutput, error) {
			return &ec2.DescribeImagesOutput{Images: []ec2types.Image{
				{ImageId: awssdk.String("ami-old"), CreationDate: awssdk.String(now.Add(-90 * 24 * time.Hour).Format(time.RFC3339))},
			}}, nil
		},
		describeSnapshots: func(_ *ec2.DescribeSnapshotsInput) (*ec2.DescribeSnapshotsOutput, error) {
			return snapshotsPage(
				ec2types.Snapshot{SnapshotId: awssdk.String("snap-old"), StartTime: awssdk.Time(now.Add(-90 * 24 * time.Hour))},
			), nil
		},
		deregisterImage: func(_ *ec2.DeregisterImageInput) (*ec2.DeregisterImageOutput, error) {
			mutated = true
			return &ec2.DeregisterImageOutput{}, nil
		},
		deleteSnapshot: func(_ *ec2.DeleteSnapshotInput) (*ec2.DeleteSnapshotOutput, error) {
			mutated = true
			return &ec2.DeleteSnapshotOutput{}, nil
		},
	}

	stats, err := p.CleanupOldBackups(context.Background(), 31*24*time.Hour, true)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.AMIs)
	assert.Equal(t, 1, stats.Snapshots)
	assert.False(t, mutated)
}

func TestCleanupOldBackups_DeletionFailureSkipped(t *testing.T) {
	now := time.Now().UTC()

	p := newTestProvider()
	p.ec2 = &fakeEC2{
		describeSnapshots: func(_ *ec2.DescribeSnapshotsInput) (*ec2.DescribeSnapshotsOutput, error) {
			return snapshotsPage(
				ec2types.Snapshot{SnapshotId: awssdk.String("snap-locked"), StartTime: awssdk.Time(now.Add(-90 * 24 * time.Hour))},
				ec2types.Snapshot{SnapshotId: awssdk.String("snap-free"), StartTime: awssdk.Time(now.Add(-90 * 24 * time.Hour))},
			), nil
		},
		deleteSnapshot: func(in *ec2.DeleteSnapshotInput) (*ec2.DeleteSnapshotOutput, error) {
			if awssdk.ToString(in.SnapshotId) == "snap-locked" {
				return nil, errors.New("snapshot is in use by an AMI")
			}
			return &ec2.DeleteSnapshotOutput{}, nil
		},
	}

	stats, err := p.CleanupOldBackups(context.Background(), 31*24*time.Hour, false)
	require.NoError(t, err)

	// The locked snapshot is skipped and not counted.
	assert.Equal(t, 0, stats.AMIs)
	assert.Equal(t, 1, stats.Snapshots)
}
