package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/semiconip/patentspike/core/algo"
	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/internal/kipris"
	"github.com/semiconip/patentspike/schema"
)

// NewPatentSource returns the local file source when an input file is configured,
// otherwise a KIPRIS client built from the configured key.
func NewPatentSource(cfg *contract.Config) (contract.PatentSource, error) {
	if cfg.InputFile != "" {
		return LoadFileSource(cfg.InputFile)
	}
	if err := cfg.RequireSource(); err != nil {
		return nil, err
	}
	opts := []kipris.Option{
		kipris.WithTimeout(cfg.RequestTimeout),
		kipris.WithLogger(contract.Logger()),
	}
	if cfg.KiprisBaseURL != "" {
		opts = append(opts, kipris.WithBaseURL(cfg.KiprisBaseURL))
	}
	return kipris.NewClient(cfg.KiprisAPIKey, opts...)
}

// FileSource serves patents from a local JSON document instead of KIPRIS.
//
// The document is either an array of records, matched to a company by applicant
// name, or an object keyed by company name or query.
type FileSource struct {
	all       []schema.Patent
	byCompany map[string][]schema.Patent
}

// LoadFileSource reads a JSON document of patent records.
func LoadFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	src, err := ParseFileSource(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return src, nil
}

// ParseFileSource decodes either document shape.
func ParseFileSource(data []byte) (*FileSource, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	switch trimmed[0] {
	case '[':
		var all []schema.Patent
		if err := json.Unmarshal(trimmed, &all); err != nil {
			return nil, err
		}
		return &FileSource{all: all}, nil
	case '{':
		var byCompany map[string][]schema.Patent
		if err := json.Unmarshal(trimmed, &byCompany); err != nil {
			return nil, err
		}
		return &FileSource{byCompany: byCompany}, nil
	default:
		return nil, fmt.Errorf("expected a JSON array or object")
	}
}

// SearchPatents returns the records of one applicant query whose publication date lies
// in [start, end]. Undated records are kept, the analyzer skips them. Array records
// without an applicant belong to no company.
func (s *FileSource) SearchPatents(ctx context.Context, query string, start, end time.Time, _ int) ([]schema.Patent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var candidates []schema.Patent
	if s.byCompany != nil {
		candidates = s.companyRecords(query)
	} else {
		for _, p := range s.all {
			if p.ApplicantName != "" && strings.Contains(p.ApplicantName, query) {
				candidates = append(candidates, p)
			}
		}
	}

	// Day granularity, as the openStartDate and openEndDate parameters of KIPRIS.
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, end.Location())
	out := make([]schema.Patent, 0, len(candidates))
	for _, p := range candidates {
		if od, ok := algo.ParseOpenDate(p.OpenDate, end.Location()); ok && (od.Before(from) || od.After(end)) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// companyRecords resolves a query against the document keys, which may be display
// names, English names or the query itself.
func (s *FileSource) companyRecords(query string) []schema.Patent {
	if recs, ok := s.byCompany[query]; ok {
		return recs
	}
	for key, recs := range s.byCompany {
		if c, _ := schema.LookupCompany(key); c.Query == query {
			return recs
		}
	}
	return nil
}
