package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/SebPartof2/stw222-bot/discordapi"
	"github.com/SebPartof2/stw222-bot/schedule"
	"github.com/SebPartof2/stw222-bot/telemetry"
)

// ErrCycleInProgress reports that another refresh already holds the channel.
// Callers surface it instead of queueing: the running cycle will publish the
// same schedule.
var ErrCycleInProgress = errors.New("refresh cycle already in progress")

// Service runs reconciliation cycles for one channel. Cycles never overlap;
// a capacity-one token is taken at entry and released on every exit path.
type Service struct {
	Schedule  *schedule.Client
	Channel   Channel
	Location  *time.Location
	PostDelay time.Duration

	token chan struct{}

	mu   sync.RWMutex
	snap Snapshot
}

// NewService wires a sync service for the given schedule source and channel.
func NewService(sc *schedule.Client, ch Channel, loc *time.Location, postDelay time.Duration) *Service {
	return &Service{
		Schedule:  sc,
		Channel:   ch,
		Location:  loc,
		PostDelay: postDelay,
		token:     make(chan struct{}, 1),
	}
}

// Outcome describes what one refresh cycle did.
type Outcome struct {
	Rebuilt  bool
	Forced   bool
	Reason   string
	Desired  int
	Dropped  int
	Posted   int
	Duration time.Duration
}

// Snapshot is the service's in-memory status, served by the HTTP API. It
// resets on restart; the channel itself is the durable state.
type Snapshot struct {
	LastRun     time.Time
	LastOutcome string
	LastReason  string
	LastError   string
	LastDesired int
	Cycles      uint64
	Rebuilds    uint64
	NoOps       uint64
	Failures    uint64
}

// Status returns a copy of the current snapshot.
func (s *Service) Status() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Refresh runs one full reconciliation cycle. force skips the no-op shortcut
// so the channel is cleared and reposted even when it already matches. When
// another cycle is running it returns ErrCycleInProgress immediately.
func (s *Service) Refresh(ctx context.Context, force bool) (*Outcome, error) {
	select {
	case s.token <- struct{}{}:
	default:
		return nil, ErrCycleInProgress
	}
	defer func() { <-s.token }()

	if telemetry.GetCorrelation(ctx) == "" {
		ctx = telemetry.WithCorrelation(ctx, uuid.New().String())
	}
	logger := telemetry.LoggerWithCorr(ctx).With(slog.String("component", "board"))
	ctx, span := telemetry.StartSpan(ctx, "board", "refresh-cycle", attribute.Bool("forced", force))
	defer span.End()

	start := time.Now()
	telemetry.CountCycle()

	doc, err := s.Schedule.Fetch(ctx)
	if err != nil {
		return nil, s.fail(logger, span, "fetch", err)
	}
	desired := schedule.Resolve(doc, s.Location)
	dropped := len(doc.Streams) - len(desired)
	telemetry.AddEventsDropped(dropped)
	telemetry.SetDesiredStreams(len(desired))

	st, err := ReadState(ctx, s.Channel)
	if err != nil {
		return nil, s.fail(logger, span, "read state", err)
	}

	keys := make([]string, 0, len(desired))
	for _, ev := range desired {
		keys = append(keys, ev.Key)
	}
	dec := Decide(keys, st)

	if !dec.Rebuild && !force {
		out := &Outcome{Desired: len(desired), Dropped: dropped, Duration: time.Since(start)}
		telemetry.CountNoOp()
		telemetry.ObserveCycleDuration(out.Duration)
		telemetry.MarkLastRun(time.Now())
		telemetry.SetSpanSuccess(span)
		s.record(out, "")
		logger.Info("channel already in sync",
			slog.Int("desired", out.Desired),
			slog.Duration("duration", out.Duration))
		return out, nil
	}

	reason := dec.Reason
	if reason == "" {
		reason = "forced"
	}
	span.SetAttributes(attribute.String("rebuild_reason", reason))
	logger.Info("rebuilding channel",
		slog.String("reason", reason),
		slog.Int("desired", len(desired)),
		slog.Int("observed", len(st.Streams)),
		slog.Int("dropped", dropped))

	if err := Clear(ctx, s.Channel); err != nil {
		return nil, s.fail(logger, span, "clear", err)
	}

	msgs := make([]discordapi.OutgoingMessage, 0, len(desired))
	for _, ev := range desired {
		msgs = append(msgs, RenderStream(ev, doc))
	}
	if err := Post(ctx, s.Channel, msgs, RenderHeader(doc), s.PostDelay); err != nil {
		return nil, s.fail(logger, span, "post", err)
	}

	out := &Outcome{
		Rebuilt:  true,
		Forced:   force && !dec.Rebuild,
		Reason:   reason,
		Desired:  len(desired),
		Dropped:  dropped,
		Posted:   len(msgs) + 1,
		Duration: time.Since(start),
	}
	telemetry.CountRebuild()
	telemetry.ObserveCycleDuration(out.Duration)
	telemetry.MarkLastRun(time.Now())
	telemetry.SetSpanSuccess(span)
	s.record(out, "")
	logger.Info("channel rebuilt",
		slog.String("reason", reason),
		slog.Int("posted", out.Posted),
		slog.Int("desired", out.Desired),
		slog.Duration("duration", out.Duration))
	return out, nil
}

// fail records a cycle abort consistently across metrics, span and snapshot.
func (s *Service) fail(logger *slog.Logger, span trace.Span, stage string, err error) error {
	wrapped := fmt.Errorf("%s: %w", stage, err)
	telemetry.CountFailure()
	telemetry.RecordError(span, wrapped)
	s.mu.Lock()
	s.snap.Cycles++
	s.snap.Failures++
	s.snap.LastRun = time.Now()
	s.snap.LastError = wrapped.Error()
	s.mu.Unlock()
	logger.Warn("refresh cycle aborted", slog.String("stage", stage), slog.Any("err", err))
	return wrapped
}

// record updates the snapshot after a completed cycle.
func (s *Service) record(out *Outcome, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Cycles++
	s.snap.LastRun = time.Now()
	s.snap.LastError = errMsg
	s.snap.LastDesired = out.Desired
	if out.Rebuilt {
		s.snap.Rebuilds++
		s.snap.LastOutcome = "rebuild"
		s.snap.LastReason = out.Reason
	} else {
		s.snap.NoOps++
		s.snap.LastOutcome = "noop"
		s.snap.LastReason = ""
	}
}

// Preview fetches and resolves the schedule without touching the channel,
// returning the document and the next n events, soonest first.
func (s *Service) Preview(ctx context.Context, n int) (*schedule.Document, []schedule.Resolved, error) {
	doc, err := s.Schedule.Fetch(ctx)
	if err != nil {
		return nil, nil, err
	}
	resolved := schedule.Resolve(doc, s.Location)
	return doc, schedule.Upcoming(resolved, time.Now(), n), nil
}

// Next returns the soonest upcoming event, or nil when none remain.
func (s *Service) Next(ctx context.Context) (*schedule.Document, *schedule.Resolved, error) {
	doc, upcoming, err := s.Preview(ctx, 1)
	if err != nil {
		return nil, nil, err
	}
	if len(upcoming) == 0 {
		return doc, nil, nil
	}
	return doc, &upcoming[0], nil
}
