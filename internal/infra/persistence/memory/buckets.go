package memory

import (
	"encoding/json"
	"fmt"
	"strings"

	"hazcat/internal/refdata"
	"hazcat/pkg/domain"
)

// Bucket key prefixes used by the snapshotting SQL stores. Each table and
// each report is one bucket so a write only touches what changed.
const (
	tableBucketPrefix  = "table/"
	reportBucketPrefix = "report/"
)

// TableBucket names the bucket holding table rows.
func TableBucket(name refdata.TableName) string { return tableBucketPrefix + string(name) }

// ReportBucket names the bucket holding one report.
func ReportBucket(id string) string { return reportBucketPrefix + id }

// EncodeBuckets serialises the named buckets of snapshot. With no names every
// bucket is encoded.
func EncodeBuckets(snapshot Snapshot, names ...string) (map[string][]byte, error) {
	if len(names) == 0 {
		for name := range snapshot.Tables {
			names = append(names, TableBucket(name))
		}
		for id := range snapshot.Reports {
			names = append(names, ReportBucket(id))
		}
	}
	out := make(map[string][]byte, len(names))
	for _, bucket := range names {
		var (
			data []byte
			err  error
		)
		switch {
		case strings.HasPrefix(bucket, tableBucketPrefix):
			rows, ok := snapshot.Tables[refdata.TableName(strings.TrimPrefix(bucket, tableBucketPrefix))]
			if !ok {
				continue
			}
			data, err = json.Marshal(rows)
		case strings.HasPrefix(bucket, reportBucketPrefix):
			report, ok := snapshot.Reports[strings.TrimPrefix(bucket, reportBucketPrefix)]
			if !ok {
				continue
			}
			data, err = json.Marshal(report)
		default:
			return nil, fmt.Errorf("unknown bucket %q", bucket)
		}
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", bucket, err)
		}
		out[bucket] = data
	}
	return out, nil
}

// DecodeBuckets rebuilds a snapshot from stored buckets. Unknown buckets are
// ignored so older databases keep loading.
func DecodeBuckets(buckets map[string][]byte) (Snapshot, error) {
	snapshot := newSnapshot()
	for bucket, payload := range buckets {
		if len(payload) == 0 {
			continue
		}
		switch {
		case strings.HasPrefix(bucket, tableBucketPrefix):
			var rows []refdata.Row
			if err := json.Unmarshal(payload, &rows); err != nil {
				return Snapshot{}, fmt.Errorf("decode %s: %w", bucket, err)
			}
			snapshot.Tables[refdata.TableName(strings.TrimPrefix(bucket, tableBucketPrefix))] = rows
		case strings.HasPrefix(bucket, reportBucketPrefix):
			var report domain.Report
			if err := json.Unmarshal(payload, &report); err != nil {
				return Snapshot{}, fmt.Errorf("decode %s: %w", bucket, err)
			}
			snapshot.Reports[report.ID] = report
		}
	}
	return snapshot, nil
}
