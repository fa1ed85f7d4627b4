// Package export renders reports as JSON and CSV artifacts and stores them in
// a blob store under reports/<id>/.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"hazcat/internal/blob"
	"hazcat/pkg/domain"
)

// Format is an artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	// FormatCSV writes one row per nuclide.
	FormatCSV Format = "csv"
	// FormatPathwaysCSV writes one row per nuclide and HC-3 pathway.
	FormatPathwaysCSV Format = "pathways_csv"
)

// DefaultFormats are written when an Exporter is built without formats.
var DefaultFormats = []Format{FormatJSON, FormatCSV, FormatPathwaysCSV}

// DefaultPrefix is the key prefix reports are written under.
const DefaultPrefix = "reports"

// Artifact is one rendered file.
type Artifact struct {
	Name        string
	Format      Format
	ContentType string
	Payload     []byte
}

// Exporter writes report artifacts to a blob store.
type Exporter struct {
	store   blob.Store
	prefix  string
	formats []Format
}

// New returns an exporter writing formats (DefaultFormats when empty) under
// prefix (DefaultPrefix when empty).
func New(store blob.Store, prefix string, formats ...Format) *Exporter {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	return &Exporter{store: store, prefix: strings.TrimSuffix(prefix, "/"), formats: formats}
}

// Key returns the blob key of an artifact.
func (e *Exporter) Key(reportID, name string) string {
	return path.Join(e.prefix, reportID, name)
}

// Export renders and stores every configured format. Existing artifacts of
// the same report are replaced. It returns the keys written.
func (e *Exporter) Export(ctx context.Context, report domain.Report) ([]string, error) {
	if report.ID == "" {
		return nil, fmt.Errorf("%w: report id required", domain.ErrInvalidInput)
	}
	keys := make([]string, 0, len(e.formats))
	for _, format := range e.formats {
		artifact, err := Render(format, report)
		if err != nil {
			return keys, err
		}
		key := e.Key(report.ID, artifact.Name)
		if _, err := e.store.Delete(ctx, key); err != nil {
			return keys, fmt.Errorf("replace %s: %w", key, err)
		}
		if _, err := e.store.Put(ctx, key, bytes.NewReader(artifact.Payload), blob.PutOptions{
			ContentType: artifact.ContentType,
			Metadata: map[string]string{
				"report":   report.ID,
				"format":   string(format),
				"nuclides": strconv.Itoa(len(report.Results)),
			},
		}); err != nil {
			return keys, fmt.Errorf("put %s: %w", key, err)
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Render encodes report in format.
func Render(format Format, report domain.Report) (Artifact, error) {
	switch format {
	case FormatJSON:
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return Artifact{}, fmt.Errorf("marshal json: %w", err)
		}
		return Artifact{Name: "report.json", Format: format, ContentType: "application/json", Payload: payload}, nil
	case FormatCSV:
		payload, err := writeCSV(resultHeader, resultRecords(report))
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Name: "results.csv", Format: format, ContentType: "text/csv", Payload: payload}, nil
	case FormatPathwaysCSV:
		payload, err := writeCSV(pathwayHeader, pathwayRecords(report))
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Name: "pathways.csv", Format: format, ContentType: "text/csv", Payload: payload}, nil
	default:
		return Artifact{}, fmt.Errorf("unsupported export format %s", format)
	}
}

var resultHeader = []string{
	"nuclide", "inventory_ci", "half_life_s", "atomic_weight", "e1_mev",
	"dcf_hc2_inhalation", "dcf_hc2_submersion", "dcf_hc3_inhalation", "dcf_hc3_ingestion",
	"hc2_ci", "hc2_g", "hc3_ci", "hc3_g", "dominant_pathway",
	"published_hc2_ci", "published_hc3_ci", "category_lookup", "category_computed", "error",
}

func resultRecords(report domain.Report) [][]string {
	out := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		n := res.Nuclide
		if res.Failed() {
			rec := make([]string, len(resultHeader))
			rec[0], rec[1], rec[len(rec)-1] = n.Name, formatFloat(res.InventoryCi), res.Err
			out = append(out, rec)
			continue
		}
		rec := []string{n.Name, formatFloat(res.InventoryCi), formatFloat(n.HalfLifeSeconds), formatFloat(n.AtomicWeight), formatFloat(n.PhotonEnergy)}
		for _, key := range domain.DCFKeys {
			d := res.DCFs.Get(key)
			if d.Available {
				rec = append(rec, formatFloat(d.Value))
			} else {
				rec = append(rec, "")
			}
		}
		rec = append(rec,
			formatFloat(res.HC2.Curies.Float()), formatFloat(res.HC2.Grams.Float()),
			formatFloat(res.HC3.Curies.Float()), formatFloat(res.HC3.Grams.Float()),
			string(res.HC3.Dominant),
		)
		if res.Published != nil {
			rec = append(rec, formatFloat(res.Published.HC2Curies), formatFloat(res.Published.HC3Curies))
		} else {
			rec = append(rec, "", "")
		}
		rec = append(rec, string(res.Categories.Lookup), string(res.Categories.Computed), "")
		out = append(out, rec)
	}
	return out
}

var pathwayHeader = []string{"nuclide", "pathway", "curies", "grams", "governing"}

func pathwayRecords(report domain.Report) [][]string {
	var out [][]string
	for _, res := range report.Results {
		if res.Failed() {
			continue
		}
		for _, pw := range res.HC3.Pathways {
			out = append(out, []string{
				res.Nuclide.Name,
				string(pw.Pathway),
				formatFloat(pw.Curies.Float()),
				formatFloat(pw.Grams.Float()),
				strconv.FormatBool(pw.Pathway == res.HC3.Dominant),
			})
		}
	}
	return out
}

func writeCSV(header []string, records [][]string) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsNaN(v):
		return ""
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}
