// Package report writes timestamped CSV reports for scan results.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lzops/lzops/types"
)

// Timestamp layout used in report filenames.
const timestampLayout = "20060102_150405"

// Writer emits CSV reports into a results directory.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter creates the results directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &Writer{dir: dir, now: time.Now}, nil
}

// WriteMatches writes matched resources for one zone and returns the file
// path.
func (w *Writer) WriteMatches(zoneName string, matches []types.Match) (string, error) {
	filename := fmt.Sprintf("%s_matched_resources_%s.csv", zoneName, w.now().Format(timestampLayout))

	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{m.ARN, formatTags(m.Tags)})
	}

	return w.write(filename, []string{"ResourceARN", "Tags"}, rows)
}

// SnapshotRecord is one old-snapshot report row.
type SnapshotRecord struct {
	Zone       string
	SnapshotID string
	StartTime  time.Time
	Tags       map[string]string
}

// WriteSnapshots writes the old-snapshots report across zones.
func (w *Writer) WriteSnapshots(records []SnapshotRecord) (string, error) {
	filename := fmt.Sprintf("old_snapshots_%s.csv", w.now().Format(timestampLayout))

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		tags := "No tags"
		if len(r.Tags) > 0 {
			tags = formatTags(r.Tags)
		}
		rows = append(rows, []string{
			r.Zone,
			r.SnapshotID,
			r.StartTime.UTC().Format("2006-01-02 15:04:05 UTC"),
			tags,
		})
	}

	return w.write(filename, []string{"LandingZone", "SnapshotId", "StartTime", "Tags"}, rows)
}

// ServerRecord is one server inventory report row.
type ServerRecord struct {
	Zone            string
	Region          string
	Name            string
	InstanceID      string
	InstanceType    string
	State           string
	Platform        string
	PlatformDetails string
	PrivateIP       string
	PublicIP        string
	LaunchTime      string
	VpcID           string
	SubnetID        string
	SecurityGroups  string
	KeyName         string
	ScanTime        string
}

// WriteServers writes the server inventory report across zones.
func (w *Writer) WriteServers(records []ServerRecord) (string, error) {
	filename := fmt.Sprintf("servers_%s.csv", w.now().Format(timestampLayout))

	header := []string{
		"LandingZone", "Region", "InstanceName", "InstanceId",
		"InstanceType", "State", "Platform", "PlatformDetails",
		"PrivateIpAddress", "PublicIpAddress", "LaunchTime",
		"VpcId", "SubnetId", "SecurityGroups", "KeyName", "ScanTime",
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Zone, r.Region, r.Name, r.InstanceID,
			r.InstanceType, r.State, r.Platform, r.PlatformDetails,
			r.PrivateIP, r.PublicIP, r.LaunchTime,
			r.VpcID, r.SubnetID, r.SecurityGroups, r.KeyName, r.ScanTime,
		})
	}

	return w.write(filename, header, rows)
}

func (w *Writer) write(filename string, header []string, rows [][]string) (string, error) {
	path := filepath.Join(w.dir, filename)

	f, err := os.Create(path) // #nosec G304 -- path is under the configured results dir
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("failed to write report header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("failed to write report row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("failed to flush report: %w", err)
	}

	return path, nil
}

// formatTags renders tags as "k=v; k=v" with keys sorted.
func formatTags(tags map[string]string) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, tags[k]))
	}
	return strings.Join(parts, "; ")
}
