package store

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dgallion1/clusterscope/internal/model"
)

// ReportStore keeps one JSON file per generated report.
type ReportStore struct {
	Layout Layout
}

func (s ReportStore) Save(r model.Report) error {
	if err := ValidateID(r.ID); err != nil {
		return err
	}
	return WriteJSON(s.Layout.ReportPath(r.ID), r)
}

// Get returns the report with the given id, or ErrNotFound.
func (s ReportStore) Get(id string) (model.Report, error) {
	if err := ValidateID(id); err != nil {
		return model.Report{}, fmt.Errorf("report %s: %w", id, ErrNotFound)
	}
	var r model.Report
	if err := ReadJSON(s.Layout.ReportPath(id), &r); err != nil {
		return model.Report{}, fmt.Errorf("report %s: %w", id, err)
	}
	return r, nil
}

// ReportSummary is the listing form of a report.
type ReportSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	ReportType string `json:"type"`
	Date       string `json:"date"`
	Language   string `json:"language"`
}

// List returns summaries of all readable reports, newest first.
func (s ReportStore) List() ([]ReportSummary, error) {
	entries, err := os.ReadDir(s.Layout.ReportsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return []ReportSummary{}, nil
		}
		return nil, err
	}
	out := make([]ReportSummary, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		r, err := s.Get(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		out = append(out, ReportSummary{ID: r.ID, Title: r.Title, ReportType: r.ReportType, Date: r.Date, Language: r.Language})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}
