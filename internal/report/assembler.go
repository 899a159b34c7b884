package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/clusterscope/internal/llm"
	"github.com/dgallion1/clusterscope/internal/model"
)

// ErrNoTitle is returned when a request has no title, industry or region to
// compose a title from.
var ErrNoTitle = errors.New("one of title, industry or region is required")

// Store persists reports.
type Store interface {
	Save(r model.Report) error
}

// Request describes a report to generate. Transcript is read, never
// modified.
type Request struct {
	Transcript    []model.Message
	ReportType    string
	Title         string
	Industry      string
	Region        string
	IncludeCharts bool
	Language      string
}

// Assembler builds, persists and returns reports.
type Assembler struct {
	store Store
	log   *slog.Logger

	// Writer, when set, fills each section's content from the transcript.
	Writer llm.Client

	// SectionConcurrency bounds parallel section writes.
	SectionConcurrency int

	now   func() time.Time
	newID func() string
}

func NewAssembler(store Store, log *slog.Logger) *Assembler {
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{
		store:              store,
		log:                log,
		SectionConcurrency: 3,
		now:                time.Now,
		newID:              uuid.NewString,
	}
}

// DownloadPath is the stable download location of a report.
func DownloadPath(id string) string {
	return "/reports/" + id
}

// Generate builds and saves a report, returning its id and download path.
func (a *Assembler) Generate(ctx context.Context, req Request) (string, string, error) {
	r, err := a.Build(ctx, req)
	if err != nil {
		return "", "", err
	}
	if err := a.store.Save(r); err != nil {
		return "", "", fmt.Errorf("save report %s: %w", r.ID, err)
	}
	a.log.Info("report generated", "report_id", r.ID, "type", r.ReportType, "sections", len(r.Structure.Sections), "charts", len(r.Charts))
	return r.ID, DownloadPath(r.ID), nil
}

// Build assembles a report without saving it.
func (a *Assembler) Build(ctx context.Context, req Request) (model.Report, error) {
	if req.Title == "" && req.Industry == "" && req.Region == "" {
		return model.Report{}, ErrNoTitle
	}
	lang := req.Language
	if lang == "" {
		lang = "zh"
	}
	title := ComposeTitle(req.ReportType, req.Title, req.Industry, req.Region)
	structure := BuildStructure(StructureInput{
		ReportType: req.ReportType,
		Title:      title,
		Industry:   req.Industry,
		Region:     req.Region,
		Messages:   req.Transcript,
		Language:   lang,
	})

	charts := []model.Chart{}
	if req.IncludeCharts {
		charts = BuildCharts(req.ReportType, req.Industry, req.Region)
	}

	if a.Writer != nil {
		if err := a.writeSections(ctx, structure, lang, req.Transcript); err != nil {
			return model.Report{}, err
		}
	}

	return model.Report{
		ID:         a.newID(),
		Title:      title,
		ReportType: req.ReportType,
		Industry:   req.Industry,
		Region:     req.Region,
		Date:       a.now().UTC().Format(time.RFC3339),
		Structure:  structure,
		Charts:     charts,
		Language:   lang,
	}, nil
}

// writeSections fills section content in place. A failed section is left
// empty; only cancellation aborts.
func (a *Assembler) writeSections(ctx context.Context, structure model.ReportStructure, lang string, transcript []model.Message) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(a.SectionConcurrency, 1))
	for i := range structure.Sections {
		sec := &structure.Sections[i]
		g.Go(func() error {
			msgs := llm.BuildSectionMessages(structure.Title, *sec, lang, transcript)
			content, err := a.Writer.Complete(gctx, msgs, llm.Options{})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				a.log.Warn("section content failed", "section", sec.Title, "error", err)
				return nil
			}
			sec.Content = strings.TrimSpace(content)
			return nil
		})
	}
	return g.Wait()
}
