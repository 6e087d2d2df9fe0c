// Package coordinator owns the process-wide state for live run
// coordination: the run registry, the injection queues, and the
// provenance tracker. One Coordinator is constructed at process start
// and handed to every collaborator; the structures are never ambient
// globals. All absence cases surface as false or empty results, never
// errors, because "run already gone" is an expected race on every
// termination path.
package coordinator

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/haasonsaas/liverun/internal/chunk"
	"github.com/haasonsaas/liverun/internal/config"
	"github.com/haasonsaas/liverun/internal/observability"
	"github.com/haasonsaas/liverun/internal/runs"
	"github.com/haasonsaas/liverun/internal/steering"
	"github.com/haasonsaas/liverun/pkg/models"
)

// Coordinator wires the run registry, injection queue, and provenance
// tracker together with logging, metrics, and tracing. Safe for
// concurrent use.
type Coordinator struct {
	log     *observability.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer

	maxInjectionLength int
	extraStopPhrases   []string
	chunking           config.ChunkingConfig

	runs       *runs.Registry
	queue      *steering.Queue
	provenance *steering.Tracker
}

// CheckpointResult is what a run loop receives when it drains its queue
// at a step boundary.
type CheckpointResult struct {
	// Entries are the drained entries, in append order. The caller owns
	// them now; they will not be seen by another drain.
	Entries []*models.InjectionEntry

	// Instruction is the folded user-injection content for the next
	// step's input. Empty when nothing was drained or a stop was
	// requested; callers must skip folding an empty instruction.
	Instruction string

	// Stopped reports that at least one drained entry carried stop
	// intent. The run's cancellation handle has already been signalled;
	// the loop should inject StopMessage and wind down.
	Stopped bool

	// StopMessage is the high-priority stop instruction, set only when
	// Stopped is true.
	StopMessage string
}

// New creates a Coordinator. A nil config means defaults; a nil logger
// or metrics gets a working default so callers never nil-check.
func New(cfg *config.Config, log *observability.Logger, metrics *observability.Metrics) *Coordinator {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = observability.NewLogger(observability.LogConfig{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
	}
	if metrics == nil {
		metrics = observability.NewNopMetrics()
	}
	return &Coordinator{
		log:                log,
		metrics:            metrics,
		tracer:             otel.Tracer("github.com/haasonsaas/liverun/internal/coordinator"),
		maxInjectionLength: cfg.Steering.MaxInjectionLength,
		extraStopPhrases:   cfg.Steering.ExtraStopPhrases,
		chunking:           cfg.Chunking,
		runs:               runs.NewRegistry(),
		queue:              steering.NewQueue(),
		provenance:         steering.NewTracker(),
	}
}

// StartRun mints a run ID, derives a cancellable run context, and
// registers the run in all three structures. The returned finish func is
// idempotent and must run on every exit path; defer it right away:
//
//	runCtx, runID, finish := coord.StartRun(ctx, sessionID)
//	defer finish()
//
// finish removes the registry handle, the injection queue, the session
// index entry, and the provenance set, so a skipped call is a leak.
func (c *Coordinator) StartRun(ctx context.Context, sessionID string) (context.Context, string, func()) {
	runID := uuid.NewString()

	runCtx, cancel := context.WithCancelCause(ctx)
	runCtx = observability.AddRunID(runCtx, runID)
	runCtx = observability.AddSessionID(runCtx, sessionID)
	runCtx, span := c.tracer.Start(runCtx, "liverun.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("session.id", sessionID),
		))

	c.runs.Register(runID, cancel)
	c.queue.Create(runID, sessionID)
	c.provenance.Init(sessionID)
	c.metrics.RunStarted()
	c.log.Info(runCtx, "run started")

	var once sync.Once
	finish := func() {
		once.Do(func() {
			c.runs.Remove(runID)
			c.queue.Remove(runID, sessionID)
			// Clear provenance only when no newer run owns the session;
			// a superseded run's cleanup must not drop IDs tracked for
			// its successor.
			if _, ok := c.queue.ActiveRun(sessionID); !ok {
				c.provenance.Clear(sessionID)
			}
			cancel(nil)
			c.metrics.RunFinished()
			c.log.Info(runCtx, "run finished")
			span.End()
		})
	}
	return runCtx, runID, finish
}

// Inject classifies, sanitizes, and enqueues text for a run. Returns
// false when the run is not accepting input.
func (c *Coordinator) Inject(ctx context.Context, runID, text string) bool {
	entry := c.newEntry(ctx, text)
	ok := c.queue.Append(runID, entry)
	c.recordInjection(ctx, ok, "run_id", runID)
	return ok
}

// InjectBySession routes text to the session's currently active run.
// Returns false when the session has no active run. Callers who only
// hold a session ID, or whose cached run ID may be stale, must use this
// instead of Inject so a defunct queue never swallows their input.
func (c *Coordinator) InjectBySession(ctx context.Context, sessionID, text string) bool {
	entry := c.newEntry(ctx, text)
	ok := c.queue.AppendBySession(sessionID, entry)
	c.recordInjection(ctx, ok, "session_id", sessionID)
	return ok
}

func (c *Coordinator) newEntry(ctx context.Context, text string) *models.InjectionEntry {
	// Stop intent is classified on the raw text; sanitization could
	// otherwise shift a phrase to the start and change the verdict.
	stop := steering.HasStopIntentWith(text, c.extraStopPhrases)
	if stop {
		c.metrics.StopIntent()
	}
	content := steering.SanitizeWithLimit(text, c.maxInjectionLength)
	return models.NewInjectionEntry(content, stop)
}

func (c *Coordinator) recordInjection(ctx context.Context, ok bool, args ...any) {
	if ok {
		c.metrics.InjectionQueued()
		c.log.Debug(ctx, "injection queued", args...)
		return
	}
	c.metrics.InjectionDropped()
	c.log.Debug(ctx, "injection dropped, run not accepting input", args...)
}

// Checkpoint atomically drains the run's queue and classifies the
// result. With no stop intent, the result carries the folded instruction
// to add to the next step's input. With stop intent, the registry handle
// is signalled and the result carries the stop message for a cooperative
// wind-down.
func (c *Coordinator) Checkpoint(ctx context.Context, runID string) CheckpointResult {
	ctx, span := c.tracer.Start(ctx, "liverun.checkpoint",
		trace.WithAttributes(attribute.String("run.id", runID)))
	defer span.End()

	entries := c.queue.Drain(runID)
	c.metrics.InjectionsDrained(len(entries))
	if len(entries) == 0 {
		return CheckpointResult{}
	}
	span.SetAttributes(attribute.Int("injection.count", len(entries)))

	var stops []*models.InjectionEntry
	for _, entry := range entries {
		if entry != nil && entry.StopIntent {
			stops = append(stops, entry)
		}
	}

	if len(stops) > 0 {
		if c.runs.Cancel(runID, "stop requested by user") {
			c.metrics.RunCancelled()
		}
		c.log.Info(ctx, "stop intent at checkpoint", "run_id", runID, "stop_entries", len(stops))
		return CheckpointResult{
			Entries:     entries,
			Stopped:     true,
			StopMessage: steering.BuildStopSystemMessage(stops),
		}
	}

	c.log.Debug(ctx, "checkpoint drained", "run_id", runID, "entries", len(entries))
	return CheckpointResult{
		Entries:     entries,
		Instruction: steering.BuildUserInjectionContent(entries),
	}
}

// CancelRun signals the run's cancellation handle with a diagnostic
// reason. Returns false when the run is unknown, which is benign: a
// cancel request racing with completion is expected.
func (c *Coordinator) CancelRun(ctx context.Context, runID, reason string) bool {
	if !c.runs.Cancel(runID, reason) {
		c.log.Debug(ctx, "cancel for unknown run", "run_id", runID)
		return false
	}
	c.metrics.RunCancelled()
	c.log.Info(ctx, "run cancelled", "run_id", runID, "reason", reason)
	return true
}

// Accepting reports whether the run currently has an injection queue,
// the cheap "is this run eligible for injection" check.
func (c *Coordinator) Accepting(runID string) bool {
	return c.queue.Has(runID)
}

// ActiveRun returns the run currently indexed for the session.
func (c *Coordinator) ActiveRun(sessionID string) (string, bool) {
	return c.queue.ActiveRun(sessionID)
}

// ActiveRuns returns the number of registered runs.
func (c *Coordinator) ActiveRuns() int {
	return c.runs.Active()
}

// TrackMessage records a server-synthesized message ID so the
// reconciliation pass keeps it. No-op before StartRun initialized the
// session, matching the tracker's tolerance for early callers.
func (c *Coordinator) TrackMessage(sessionID, messageID string) {
	c.provenance.Track(sessionID, messageID)
}

// TrackedMessages returns the session's tracked message IDs. The
// reconciliation routine must union these into its keep-set before
// deleting anything.
func (c *Coordinator) TrackedMessages(sessionID string) []string {
	return c.provenance.Tracked(sessionID)
}

// ChunkForDelivery segments outbound text using the configured chunking
// defaults and records chunk metrics. Use right before handing chunks to
// a size-constrained channel; send them in Index order.
func (c *Coordinator) ChunkForDelivery(ctx context.Context, text string) []chunk.Chunk {
	return c.chunkWithLimit(ctx, text, c.chunking.MaxLength)
}

// ChunkForChannel is ChunkForDelivery with the channel's size ceiling,
// honoring configured per-channel overrides.
func (c *Coordinator) ChunkForChannel(ctx context.Context, text, channel string) []chunk.Chunk {
	limit, ok := c.chunking.ChannelLimits[channel]
	if !ok {
		limit = chunk.LimitFor(channel)
	}
	return c.chunkWithLimit(ctx, text, limit)
}

func (c *Coordinator) chunkWithLimit(ctx context.Context, text string, limit int) []chunk.Chunk {
	opts := chunk.DefaultOptions()
	if limit > 0 {
		opts.MaxLength = limit
	}
	opts.PreserveHeaders = c.chunking.PreserveHeadersEnabled()
	opts.AddChunkHeaders = c.chunking.AddChunkHeaders

	chunks := chunk.Split(text, opts)
	sizes := make([]int, len(chunks))
	for i, ch := range chunks {
		sizes[i] = len(ch.Text)
	}
	c.metrics.ChunksProduced(sizes)
	if len(chunks) > 1 {
		c.log.Debug(ctx, "output chunked",
			"chunks", len(chunks),
			"summary", chunk.SummaryHeader(len(chunks), len(text)))
	}
	return chunks
}
