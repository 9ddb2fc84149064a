// Package pipeline orchestrates the three resolution phases: per-case,
// per-court, and court-agnostic. Each phase builds node arenas, runs its
// strategy ladder, and remaps mentions to the surviving parents; the
// final phase labels the survivors and builds the catalog.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/scales-okn/jed/internal/audit"
	"github.com/scales-okn/jed/internal/registry"
	"github.com/scales-okn/jed/internal/types"
)

// Options configures a resolution run.
type Options struct {
	// RunID tags every audit event produced by this run.
	RunID string
	// DormancyCutoff sets aside codebook judges whose latest termination
	// predates it. Zero disables dormancy filtering.
	DormancyCutoff time.Time
	// TossThreshold is the similarity bound for party/counsel echo drops.
	TossThreshold int
	// Concurrency bounds parallel arena sweeps. Zero means GOMAXPROCS.
	Concurrency int
	// ProgressEvents throttles progress audit events. Nil disables them.
	ProgressEvents *rate.Limiter
}

// DefaultOptions returns the standard run settings.
func DefaultOptions(runID string) Options {
	return Options{
		RunID:          runID,
		DormancyCutoff: time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC),
		TossThreshold:  95,
		ProgressEvents: rate.NewLimiter(rate.Every(5*time.Second), 1),
	}
}

func (o *Options) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

// HeaderEntity is a party or counsel name from case header metadata,
// used to drop misextracted mentions.
type HeaderEntity struct {
	CaseID string `json:"ucid"`
	Role   string `json:"role"`
	Name   string `json:"entity"`
}

// Result is the output of a full resolution run.
type Result struct {
	// Mentions are the input mentions with parent names and entity IDs
	// filled in. Tossed party/counsel echoes are removed.
	Mentions []*types.Mention
	// Catalog holds one row per kept entity.
	Catalog []types.CatalogEntry
	// Tossed counts dropped party/counsel echoes.
	Tossed int
	// Merges counts absorptions across all three phases.
	Merges int
}

// Runner executes the resolution pipeline.
type Runner struct {
	opts Options
	rec  audit.Recorder
}

// NewRunner builds a Runner. rec may be nil to disable auditing.
func NewRunner(opts Options, rec audit.Recorder) *Runner {
	if opts.TossThreshold <= 0 {
		opts.TossThreshold = 95
	}
	return &Runner{opts: opts, rec: rec}
}

// Run resolves mentions against the registries and returns the repointed
// mentions plus the entity catalog.
func (r *Runner) Run(ctx context.Context, mentions []*types.Mention,
	parties, counsels []HeaderEntity,
	fjc []types.FJCJudge, roster []types.RegistryJudge) (*Result, error) {

	if len(mentions) == 0 {
		return nil, fmt.Errorf("no mentions to resolve")
	}
	prepareMentions(mentions)

	casePhase, err := r.runCasePhase(ctx, mentions, parties, counsels)
	if err != nil {
		return nil, fmt.Errorf("case phase: %w", err)
	}

	fjcSeeds := registry.FJCSeeds(fjc)
	rosterSeeds := registry.RosterSeeds(roster)

	courtPhase, err := r.runCourtPhase(ctx, mentions, casePhase, fjcSeeds, rosterSeeds)
	if err != nil {
		return nil, fmt.Errorf("court phase: %w", err)
	}

	freePhase, err := r.runFreePhase(ctx, courtPhase)
	if err != nil {
		return nil, fmt.Errorf("free phase: %w", err)
	}

	result, err := r.buildResult(ctx, mentions, casePhase, courtPhase, freePhase)
	if err != nil {
		return nil, fmt.Errorf("labeling: %w", err)
	}
	result.Tossed = casePhase.tossed
	result.Merges = casePhase.merges + courtPhase.merges + freePhase.merges
	return result, nil
}

// record forwards an event when auditing is enabled.
func (r *Runner) record(ctx context.Context, ev *audit.Event) {
	if r.rec != nil {
		r.rec.Record(ctx, ev)
	}
}

// progress emits a throttled progress event.
func (r *Runner) progress(ctx context.Context, phase audit.Phase, msg string) {
	if r.rec == nil || r.opts.ProgressEvents == nil || !r.opts.ProgressEvents.Allow() {
		return
	}
	r.rec.Record(ctx, audit.NewEvent(r.opts.RunID, audit.EventTypeProgress, phase, audit.SeverityInfo, msg, nil))
}

// prepareMentions applies the eligibility rules mentions carry into the
// pipeline: blank or one-character names never participate.
func prepareMentions(mentions []*types.Mention) {
	for _, m := range mentions {
		if len(m.CleanedName) <= 1 {
			m.EntityID = types.EntityInconclusive
		}
	}
}

// eachGroup runs fn over the groups concurrently, bounded by the
// configured concurrency.
func eachGroup[K comparable, V any](ctx context.Context, limit int, groups map[K]V, fn func(K, V) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for key, val := range groups {
		key, val := key, val
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(key, val)
		})
	}
	return g.Wait()
}
