package aws

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// Snapshot is one self-owned EBS snapshot.
type Snapshot struct {
	ID        string
	StartTime time.Time
	Tags      map[string]string
}

// CleanupStats counts the backups a cleanup pass removed (or would remove
// under dry run).
type CleanupStats struct {
	AMIs      int
	Snapshots int
}

// ListOldSnapshots returns self-owned snapshots started before the cutoff.
func (p *Provider) ListOldSnapshots(ctx context.Context, olderThan time.Duration) ([]Snapshot, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	var old []Snapshot
	paginator := ec2.NewDescribeSnapshotsPaginator(p.ec2, &ec2.DescribeSnapshotsInput{
		OwnerIds: []string{"self"},
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", err)
		}

		for _, snap := range page.Snapshots {
			started := awssdk.ToTime(snap.StartTime)
			if !started.Before(cutoff) {
				continue
			}
			old = append(old, Snapshot{
				ID:        awssdk.ToString(snap.SnapshotId),
				StartTime: started,
				Tags:      ec2TagMap(snap.Tags),
			})
		}
	}

	return old, nil
}

// CleanupOldBackups deregisters AMIs and deletes snapshots older than the
// cutoff. With dryRun set, nothing is deleted and the stats report what
// would have been. Per-resource deletion failures are logged and skipped;
// only the listing calls are fatal.
func (p *Provider) CleanupOldBackups(ctx context.Context, olderThan time.Duration, dryRun bool) (CleanupStats, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	var stats CleanupStats

	amiCount, err := p.cleanupOldAMIs(ctx, cutoff, dryRun)
	if err != nil {
		return stats, err
	}
	stats.AMIs = amiCount

	snapCount, err := p.cleanupOldSnapshots(ctx, cutoff, dryRun)
	if err != nil {
		return stats, err
	}
	stats.Snapshots = snapCount

	return stats, nil
}

func (p *Provider) cleanupOldAMIs(ctx context.Context, cutoff time.Time, dryRun bool) (int, error) {
	count := 0
	paginator := ec2.NewDescribeImagesPaginator(p.ec2, &ec2.DescribeImagesInput{
		Owners: []string{"self"},
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return count, fmt.Errorf("failed to list AMIs: %w", err)
		}

		for _, image := range page.Images {
			created, err := time.Parse(time.RFC3339, awssdk.ToString(image.CreationDate))
			if err != nil || !created.Before(cutoff) {
				continue
			}

			imageID := awssdk.ToString(image.ImageId)
			if !dryRun {
				if _, err := p.ec2.DeregisterImage(ctx, &ec2.DeregisterImageInput{
					ImageId: awssdk.String(imageID),
				}); err != nil {
					p.logger.Error().Err(err).Str("image_id", imageID).Msg("failed to deregister AMI")
					continue
				}
				p.logger.Info().Str("image_id", imageID).Msg("deregistered AMI")
			}
			count++
		}
	}

	return count, nil
}

func (p *Provider) cleanupOldSnapshots(ctx context.Context, cutoff time.Time, dryRun bool) (int, error) {
	count := 0
	paginator := ec2.NewDescribeSnapshotsPaginator(p.ec2, &ec2.DescribeSnapshotsInput{
		OwnerIds: []string{"self"},
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return count, fmt.Errorf("failed to list snapshots: %w", err)
		}

		for _, snap := range page.Snapshots {
			if !awssdk.ToTime(snap.StartTime).Before(cutoff) {
				continue
			}

			snapID := awssdk.ToString(snap.SnapshotId)
			if !dryRun {
				if _, err := p.ec2.DeleteSnapshot(ctx, &ec2.DeleteSnapshotInput{
					SnapshotId: awssdk.String(snapID),
				}); err != nil {
					p.logger.Error().Err(err).Str("snapshot_id", snapID).Msg("failed to delete snapshot")
					continue
				}
				p.logger.Info().Str("snapshot_id", snapID).Msg("deleted snapshot")
			}
			count++
		}
	}

	return count, nil
}

// ec2TagMap converts EC2 tags to a plain map.
func ec2TagMap(tags []ec2types.Tag) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		m[awssdk.ToString(t.Key)] = awssdk.ToString(t.Value)
	}
	return m
}
