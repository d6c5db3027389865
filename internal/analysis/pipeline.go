package analysis

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/verte-zerg/perfdash/internal/delta"
	"github.com/verte-zerg/perfdash/internal/model"
)

const tracerName = "github.com/verte-zerg/perfdash/internal/analysis"

// ReportGenerator produces a report for a (url, device) pair.
type ReportGenerator interface {
	Generate(url string, device model.DeviceClass) model.PerformanceReport
}

// Store persists prior results and run history.
type Store interface {
	LoadPreviousResults(ctx context.Context) ([]model.PersistedDelta, error)
	SavePreviousResults(ctx context.Context, entries []model.PersistedDelta) error
	InsertRun(ctx context.Context, run model.RunRecord, entries []model.ResultEntry) (int64, error)
}

// Pipeline analyzes URLs one at a time, Mobile then Desktop, and persists the outcome.
type Pipeline struct {
	gen      ReportGenerator
	store    Store
	delayMin time.Duration
	delayMax time.Duration

	rndMu sync.Mutex
	rnd   *rand.Rand

	sleep  func(ctx context.Context, d time.Duration) error
	now    func() time.Time
	tracer trace.Tracer

	running atomic.Bool
}

// New constructs a Pipeline. A zero delay range disables the simulated wait.
func New(gen ReportGenerator, st Store, cfg model.Config) *Pipeline {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Pipeline{
		gen:      gen,
		store:    st,
		delayMin: cfg.DelayMin,
		delayMax: cfg.DelayMax,
		rnd:      rand.New(rand.NewSource(seed + 1)),
		sleep:    sleepContext,
		now:      time.Now,
		tracer:   otel.Tracer(tracerName),
	}
}

// Running reports whether a run is in flight.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// Validate trims and drops blank entries, then checks URL syntax.
func Validate(raw []string) ([]string, error) {
	urls := model.NormalizeURLs(raw)
	if len(urls) == 0 {
		return nil, model.NewError(model.NoInput, "please enter at least one URL")
	}
	var invalid []string
	for _, u := range urls {
		if !model.ValidURL(u) {
			invalid = append(invalid, u)
		}
	}
	if len(invalid) > 0 {
		return nil, model.InvalidURLError(invalid)
	}
	return urls, nil
}

// Run analyzes urls into sess. onEntry, if set, is called after each entry is appended.
// Validation failures and Busy leave sess untouched. Prior results are merged into
// storage only after every entry has completed.
func (p *Pipeline) Run(ctx context.Context, sess *Session, raw []string, onEntry func(model.ResultEntry)) ([]model.ResultEntry, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, model.NewError(model.Busy, "an analysis is already running")
	}
	defer p.running.Store(false)

	urls, err := Validate(raw)
	if err != nil {
		return nil, err
	}

	ctx, span := p.tracer.Start(ctx, "analysis.run", trace.WithAttributes(attribute.Int("url.count", len(urls))))
	defer span.End()

	prior, err := p.store.LoadPreviousResults(ctx)
	if err != nil {
		logrus.WithError(err).Warn("failed to load previous results; comparing against nothing")
		prior = nil
	}
	sess.Reset(delta.NewBaseline(prior))
	startedAt := p.now()
	log := logrus.WithField("urls", len(urls))
	log.Info("analysis started")

	for _, u := range urls {
		for _, device := range model.Devices() {
			if err := p.wait(ctx); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "cancelled")
				log.WithError(err).Warn("analysis cancelled")
				return sess.Entries(), err
			}
			_, step := p.tracer.Start(ctx, "analysis.generate", trace.WithAttributes(
				attribute.String("url", u),
				attribute.String("device", string(device)),
			))
			report := p.gen.Generate(u, device)
			step.End()

			entry := model.ResultEntry{URL: u, Device: device, Report: report}
			sess.Append(entry)
			log.WithFields(logrus.Fields{"url": u, "device": device}).Debug("entry complete")
			if onEntry != nil {
				onEntry(entry)
			}
		}
	}

	entries := sess.Entries()
	if err := p.persist(ctx, prior, entries, startedAt, len(urls)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return entries, err
	}
	log.WithField("entries", len(entries)).Info("analysis complete")
	return entries, nil
}

func (p *Pipeline) persist(ctx context.Context, prior []model.PersistedDelta, entries []model.ResultEntry, startedAt time.Time, urlCount int) error {
	// Re-read so writes made by another process since the run started are kept.
	latest, err := p.store.LoadPreviousResults(ctx)
	if err != nil {
		latest = prior
	}
	if err := p.store.SavePreviousResults(ctx, delta.Merge(latest, entries)); err != nil {
		return fmt.Errorf("failed to persist previous results: %w", err)
	}
	run := model.RunRecord{StartedAt: startedAt, EndedAt: p.now(), URLCount: urlCount}
	if _, err := p.store.InsertRun(ctx, run, entries); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

func (p *Pipeline) wait(ctx context.Context) error {
	d := p.nextDelay()
	if d <= 0 {
		return ctx.Err()
	}
	return p.sleep(ctx, d)
}

func (p *Pipeline) nextDelay() time.Duration {
	if p.delayMax <= p.delayMin {
		return p.delayMin
	}
	p.rndMu.Lock()
	defer p.rndMu.Unlock()
	return p.delayMin + time.Duration(p.rnd.Int63n(int64(p.delayMax-p.delayMin)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
