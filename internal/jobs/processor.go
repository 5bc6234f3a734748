package jobs

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"noteapi/internal/media"
	"noteapi/internal/model"
	"noteapi/internal/store"
	"noteapi/internal/synth"
)

// Processor executes the background half of a job: correlate the stored
// inputs, invoke synthesis, publish the result. Every step error is caught
// here and recorded as a failed status; nothing escapes to the task runner.
type Processor struct {
	store      store.JobStore
	correlator *media.Correlator
	synth      synth.Synthesizer
	tracker    *Tracker
	log        *slog.Logger
	processed  *prometheus.CounterVec
}

// NewProcessor constructs a Processor and registers its metrics on reg.
func NewProcessor(st store.JobStore, corr *media.Correlator, syn synth.Synthesizer, tracker *Tracker, log *slog.Logger, reg prometheus.Registerer) (*Processor, error) {
	p := &Processor{
		store:      st,
		correlator: corr,
		synth:      syn,
		tracker:    tracker,
		log:        log,
		processed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noteapi_jobs_processed_total",
				Help: "Total number of background jobs reaching a terminal state.",
			},
			[]string{"status"},
		),
	}
	if err := reg.Register(p.processed); err != nil {
		return nil, err
	}
	return p, nil
}

// Process runs a job to a terminal state. Provider failures have already
// been converted to textual results by the synthesizer, so any error seen
// here is a hard one (unreadable input, failed transfer, store write) and
// marks the job failed.
func (p *Processor) Process(ctx context.Context, jobID string, userText string) {
	log := p.log.With("job_id", jobID)
	log.Info("processing started")

	if err := p.tracker.Transition(jobID, model.JobStatusProcessing); err != nil {
		log.Error("cannot start processing", "error", err)
		return
	}

	bundle, err := p.correlator.Resolve(ctx, jobID)
	if err != nil {
		p.fail(log, jobID, "correlate inputs", err)
		return
	}
	log.Info("inputs resolved", "has_audio", bundle.Audio != nil, "images", len(bundle.Images))

	content, err := p.synth.GenerateNotes(ctx, bundle.Audio, bundle.Images, userText)
	if err != nil {
		p.fail(log, jobID, "synthesize", err)
		return
	}

	if err := p.store.PutResult(ctx, jobID, content); err != nil {
		p.fail(log, jobID, "publish result", err)
		return
	}

	if err := p.tracker.Transition(jobID, model.JobStatusCompleted); err != nil {
		log.Error("cannot record completion", "error", err)
	}
	p.processed.WithLabelValues(string(model.JobStatusCompleted)).Inc()
	log.Info("processing completed")
}

func (p *Processor) fail(log *slog.Logger, jobID, step string, err error) {
	log.Error("processing failed", "step", step, "error", err)
	if terr := p.tracker.Transition(jobID, model.JobStatusFailed); terr != nil {
		log.Error("cannot record failure", "error", terr)
	}
	p.processed.WithLabelValues(string(model.JobStatusFailed)).Inc()
}
