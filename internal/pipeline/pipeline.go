// Package pipeline orchestrates the import flow: gate, extract, structure,
// map, validate, persist. Files in a batch are processed concurrently but
// independently; one bad file never takes down its neighbors.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/recipeops/ladle/internal/catalog"
	"github.com/recipeops/ladle/internal/eventlog"
	"github.com/recipeops/ladle/internal/extract"
	"github.com/recipeops/ladle/internal/mapper"
	"github.com/recipeops/ladle/internal/parse"
	"github.com/recipeops/ladle/internal/recipe"
	"github.com/recipeops/ladle/internal/store"
	"github.com/recipeops/ladle/internal/validate"
)

// Status classifies what happened to one input file.
type Status string

const (
	StatusSaved       Status = "saved"        // persisted, possibly with warnings
	StatusRejected    Status = "rejected"     // refused at the ingress gate
	StatusParseFailed Status = "parse_failed" // text could not be structured
	StatusInvalid     Status = "invalid"      // failed validation, not persisted
	StatusFailed      Status = "failed"       // any other error
)

// Input is one file submitted for import.
type Input struct {
	Name         string
	Data         []byte
	DeclaredMIME string
}

// Outcome is the per-file result. Outcomes are returned in input order.
type Outcome struct {
	Input   string              `json:"input" yaml:"input"`
	Status  Status              `json:"status" yaml:"status"`
	Error   string              `json:"error,omitempty" yaml:"error,omitempty"`
	Path    string              `json:"path,omitempty" yaml:"path,omitempty"`
	Recipe  *recipe.DraftRecipe `json:"recipe,omitempty" yaml:"-"`
	Elapsed time.Duration       `json:"elapsed" yaml:"elapsed"`
}

// Options wires a Processor.
type Options struct {
	Extractor  *extract.Extractor
	Parser     *parse.Parser
	Catalog    *catalog.Snapshot
	Tiers      mapper.Tiers
	Validation validate.Options
	Store      *store.Store
	Events     *eventlog.Log
	MaxWorkers int
	Log        *slog.Logger
}

// Processor runs import batches.
type Processor struct {
	extractor  *extract.Extractor
	parser     *parse.Parser
	mapper     *mapper.Mapper
	validation validate.Options
	store      *store.Store
	events     *eventlog.Log
	maxWorkers int
	log        *slog.Logger

	// saveMu serializes persistence so duplicate-name detection inside a
	// batch is race-free.
	saveMu sync.Mutex
}

// New creates a Processor. The catalog snapshot is fixed for the Processor's
// lifetime so every file in a batch maps against the same product list.
func New(opts Options) *Processor {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	events := opts.Events
	if events == nil {
		events = eventlog.Nop()
	}
	workers := opts.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		extractor:  opts.Extractor,
		parser:     opts.Parser,
		mapper:     mapper.New(opts.Catalog, opts.Tiers, log),
		validation: opts.Validation,
		store:      opts.Store,
		events:     events,
		maxWorkers: workers,
		log:        log,
	}
}

// Run imports a batch. The returned slice has one Outcome per input, in the
// same order. Run itself only fails on a canceled context; per-file failures
// land in the outcomes.
func (p *Processor) Run(ctx context.Context, inputs []Input) []Outcome {
	outcomes := make([]Outcome, len(inputs))

	sem := make(chan struct{}, p.maxWorkers)
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in Input) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				outcomes[i] = Outcome{Input: in.Name, Status: StatusFailed, Error: ctx.Err().Error()}
				return
			}
			outcomes[i] = p.processOne(ctx, in)
		}(i, in)
	}
	wg.Wait()

	return outcomes
}

func (p *Processor) processOne(ctx context.Context, in Input) Outcome {
	start := time.Now()
	out := Outcome{Input: in.Name}
	defer func() {
		out.Elapsed = time.Since(start)
	}()

	p.events.Emit(eventlog.StageUpload, in.Name, "received", map[string]any{
		"size": len(in.Data), "mime": in.DeclaredMIME,
	})

	extracted, err := p.extractor.Extract(ctx, extract.File{
		Name: in.Name, Data: in.Data, DeclaredMIME: in.DeclaredMIME,
	})
	if err != nil {
		var rejected *extract.RejectedInputError
		if errors.As(err, &rejected) {
			out.Status = StatusRejected
			out.Error = rejected.Reason
			p.events.Emit(eventlog.StageUpload, in.Name, "rejected", map[string]any{"reason": rejected.Reason})
		} else {
			out.Status = StatusFailed
			out.Error = err.Error()
			p.events.Emit(eventlog.StageError, in.Name, err.Error(), nil)
		}
		p.log.Warn("file not imported", "file", in.Name, "status", out.Status, "error", out.Error)
		return out
	}

	p.events.Emit(eventlog.StageExtract, in.Name, "extracted", map[string]any{
		"file_type": string(extracted.FileType), "pages": len(extracted.Pages),
	})
	for _, page := range extracted.Pages {
		p.events.Emit(eventlog.StageRoute, in.Name, "page routed", map[string]any{
			"page": page.PageIndex, "method": string(page.Method), "provenance": page.Provenance,
		})
	}

	parsed, err := p.parser.Parse(ctx, in.Name, extracted.Pages)
	if err != nil {
		var pf *parse.ParseFailureError
		if errors.As(err, &pf) {
			out.Status = StatusParseFailed
		} else {
			out.Status = StatusFailed
		}
		out.Error = err.Error()
		p.events.Emit(eventlog.StageError, in.Name, err.Error(), nil)
		p.log.Warn("file not imported", "file", in.Name, "status", out.Status, "error", out.Error)
		return out
	}
	p.events.Emit(eventlog.StageParse, in.Name, "structured", map[string]any{
		"recipe": parsed.Draft.Name, "ingredients": len(parsed.Ingredients),
	})

	draft := parsed.Draft
	var total float64
	draft.Ingredients, draft.Stats, total = p.mapper.Resolve(parsed.Ingredients)
	draft.TotalCost = total
	p.events.Emit(eventlog.StageMap, in.Name, "mapped", map[string]any{
		"auto": draft.Stats.Auto, "review": draft.Stats.Review, "unmapped": draft.Stats.Unmapped,
	})

	draft.Source = sourceInfo(in.Name, extracted)

	draft.Validation = validate.Check(&draft, p.validation)
	p.events.Emit(eventlog.StageValidate, in.Name, string(draft.Validation.Status), map[string]any{
		"messages": len(draft.Validation.Messages),
	})
	out.Recipe = &draft

	if draft.Validation.Status == recipe.StatusInvalid {
		out.Status = StatusInvalid
		out.Error = "validation failed"
		p.log.Warn("recipe invalid", "file", in.Name, "messages", draft.Validation.Messages)
		return out
	}

	p.saveMu.Lock()
	path, err := p.store.Save(&draft)
	p.saveMu.Unlock()
	if err != nil {
		out.Status = StatusFailed
		out.Error = err.Error()
		p.events.Emit(eventlog.StageError, in.Name, err.Error(), nil)
		return out
	}

	out.Status = StatusSaved
	out.Path = path
	p.events.Emit(eventlog.StageSave, in.Name, "saved", map[string]any{"path": path, "recipe": draft.Name})
	p.log.Info("recipe imported",
		"file", in.Name, "recipe", draft.Name, "status", string(draft.Validation.Status),
		"total_cost", draft.TotalCost, "ingredients", len(draft.Ingredients))
	return out
}

func sourceInfo(name string, extracted *extract.Result) recipe.SourceInfo {
	trail := make([]recipe.PageTrail, 0, len(extracted.Pages))
	for _, page := range extracted.Pages {
		trail = append(trail, recipe.PageTrail{
			PageIndex: page.PageIndex,
			Method:    page.Method,
			Metrics:   page.Metrics,
		})
	}
	return recipe.SourceInfo{
		Filename:   name,
		FileType:   extracted.FileType,
		SHA256:     extracted.SHA256,
		SizeBytes:  extracted.SizeBytes,
		ImportedAt: time.Now().UTC(),
		Pages:      trail,
	}
}
