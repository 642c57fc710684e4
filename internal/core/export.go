package core

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mendel/internal/blob"
	"mendel/pkg/genetics"
)

// ExportFormat names a report encoding.
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
	FormatCSV  ExportFormat = "csv"
)

// ParseExportFormat accepts json or csv in any case; blank means json.
func ParseExportFormat(raw string) (ExportFormat, bool) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatJSON:
		return FormatJSON, true
	case FormatCSV:
		return FormatCSV, true
	}
	return "", false
}

// ExportDocument is the JSON report body.
type ExportDocument struct {
	Cross       CrossResult                `json:"cross"`
	Inheritance genetics.InheritanceConfig `json:"inheritance"`
}

// ExportResult describes a stored report.
type ExportResult struct {
	Format ExportFormat `json:"format"`
	Blob   blob.Info    `json:"blob"`
}

type renderedReport struct {
	contentType string
	payload     []byte
}

// Export renders the session's current cross and writes it to the blob
// store under exports/<session>/<uuid>.<format>. The blob URL is presigned
// when the backend supports it.
func (s *Service) Export(ctx context.Context, id, format string) (ExportResult, error) {
	var out ExportResult
	err := s.observe(ctx, "export_cross", id, true, func(ctx context.Context) error {
		f, ok := ParseExportFormat(format)
		if !ok {
			return ErrInvalidInput{Field: "format", Reason: fmt.Sprintf("unsupported export format %q", format)}
		}
		session, st, err := s.current(id)
		if err != nil {
			return err
		}
		report, err := renderReport(f, st.view(session), session.Inheritance)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("exports/%s/%s.%s", session.ID, s.newKey(), f)
		info, err := s.blobs.Put(ctx, key, bytes.NewReader(report.payload), blob.PutOptions{
			ContentType: report.contentType,
			Metadata: map[string]string{
				"session": session.ID,
				"arity":   string(st.Arity),
			},
		})
		if err != nil {
			return fmt.Errorf("store export: %w", err)
		}
		url, err := s.blobs.PresignURL(ctx, key, blob.SignedURLOptions{})
		switch {
		case err == nil:
			info.URL = url
		case !errors.Is(err, blob.ErrUnsupported):
			return fmt.Errorf("presign export: %w", err)
		}
		out = ExportResult{Format: f, Blob: info}
		return nil
	})
	return out, err
}

func renderReport(format ExportFormat, res CrossResult, cfg genetics.InheritanceConfig) (renderedReport, error) {
	switch format {
	case FormatCSV:
		payload, err := renderCSV(res)
		if err != nil {
			return renderedReport{}, err
		}
		return renderedReport{contentType: "text/csv", payload: payload}, nil
	default:
		payload, err := json.MarshalIndent(ExportDocument{Cross: res, Inheritance: cfg}, "", "  ")
		if err != nil {
			return renderedReport{}, fmt.Errorf("marshal json: %w", err)
		}
		return renderedReport{contentType: "application/json", payload: payload}, nil
	}
}

// renderCSV writes one row per distribution entry. Poly crosses write one
// row per genotype of each record, the record label in the group column.
func renderCSV(res CrossResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write([]string{"section", "group", "key", "count", "total", "percentage"}); err != nil {
		return nil, err
	}
	write := func(section, group string, entries []genetics.Entry) error {
		for _, e := range entries {
			row := []string{section, group, e.Key, strconv.Itoa(e.Count), strconv.Itoa(e.Total), e.Percentage}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
		return nil
	}
	if err := write("genotype", res.Parent1+" × "+res.Parent2, res.Genotypes); err != nil {
		return nil, err
	}
	if err := write("phenotype", res.Parent1+" × "+res.Parent2, res.Phenotypes); err != nil {
		return nil, err
	}
	for _, rec := range res.Records {
		if err := write("record", rec.Label, rec.Distribution().Entries()); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
