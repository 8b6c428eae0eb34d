package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/help-global/caseflow/internal/config"
	"github.com/help-global/caseflow/internal/invoice"
	"github.com/help-global/caseflow/internal/model"
	"github.com/help-global/caseflow/internal/resilience"
	"github.com/help-global/caseflow/internal/state"
	"github.com/help-global/caseflow/internal/store"
	"github.com/help-global/caseflow/pkg/gdrive"
	"github.com/help-global/caseflow/pkg/gmail"
	"github.com/help-global/caseflow/pkg/gsheets"
	"github.com/help-global/caseflow/pkg/telegram"
)

// Runner drives one full pipeline run: discovery, per-case processing, and
// the final digest notification. Execution is strictly sequential; durable
// state is saved after every transition so a killed process resumes from
// the last finished step.
type Runner struct {
	cfg      *config.Config
	state    state.Store
	runs     store.Store
	gmail    gmail.Client
	drive    gdrive.Client
	sheets   gsheets.Client
	notifier telegram.Client
	text     invoice.TextSource
	retry    resilience.RetryConfig
	now      func() time.Time
}

// New creates a Runner with all dependencies.
func New(
	cfg *config.Config,
	st state.Store,
	runs store.Store,
	gmailClient gmail.Client,
	driveClient gdrive.Client,
	sheetsClient gsheets.Client,
	notifier telegram.Client,
	textSource invoice.TextSource,
) *Runner {
	return &Runner{
		cfg:      cfg,
		state:    st,
		runs:     runs,
		gmail:    gmailClient,
		drive:    driveClient,
		sheets:   sheetsClient,
		notifier: notifier,
		text:     textSource,
		retry:    resilience.DefaultRetryConfig(),
		now:      time.Now,
	}
}

// Run executes one full pipeline pass. Only state-store failures escape as
// errors; discovery and per-case failures are absorbed into the digest and
// the case states.
func (r *Runner) Run(ctx context.Context) (*model.RunRecord, error) {
	log := zap.L()
	log.Info("pipeline: starting run")

	doc, err := r.state.Load()
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load state")
	}

	run := r.createRun(ctx)
	digest := NewDigest()

	// Discovery failures yield zero new cases but never abort the run:
	// already-pending cases are still processed.
	discovered, err := r.discover(ctx, doc, digest)
	if err != nil {
		log.Error("pipeline: discovery failed", zap.Error(err))
		digest.Addf("❌ mail search failed")
	}
	run.Discovered = discovered
	r.save(doc)

	for _, cs := range doc.Pending() {
		if r.processCase(ctx, doc, cs, digest) {
			run.Done++
		} else {
			run.Errored++
		}
	}

	r.notify(ctx, digest)

	run.Digest = digest.String()
	run.Status = model.RunStatusComplete
	r.finishRun(ctx, run)

	log.Info("pipeline: run complete",
		zap.Int("discovered", run.Discovered),
		zap.Int("done", run.Done),
		zap.Int("errored", run.Errored),
	)
	return run, nil
}

// save persists the state document; failures are logged, not fatal, so one
// bad disk write does not abort sibling cases.
func (r *Runner) save(doc *state.Document) {
	if err := r.state.Save(doc); err != nil {
		zap.L().Error("pipeline: save state", zap.Error(err))
	}
}

// notify sends the digest as one message. Delivery is best-effort.
func (r *Runner) notify(ctx context.Context, digest *Digest) {
	if digest.Empty() {
		return
	}
	if err := r.notifier.Send(ctx, digest.String()); err != nil {
		zap.L().Warn("pipeline: digest notification failed", zap.Error(err))
	}
}

// Run-history bookkeeping is audit only; failures never affect processing.

func (r *Runner) createRun(ctx context.Context) *model.RunRecord {
	run, err := r.runs.CreateRun(ctx)
	if err != nil {
		zap.L().Warn("pipeline: create run record", zap.Error(err))
		return &model.RunRecord{Status: model.RunStatusRunning, StartedAt: r.now().UTC()}
	}
	return run
}

func (r *Runner) finishRun(ctx context.Context, run *model.RunRecord) {
	if run.ID == "" {
		return
	}
	run.FinishedAt = r.now().UTC()
	if err := r.runs.FinishRun(ctx, run); err != nil {
		zap.L().Warn("pipeline: finish run record", zap.Error(err))
	}
}
