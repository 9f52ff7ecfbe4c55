package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jobtrail/jobtrail/pkg/models"
)

// Source lists and fetches messages from the remote mail provider
type Source interface {
	ListMessageIDs(ctx context.Context, max int64) ([]string, error)
	GetMessage(ctx context.Context, id string) (*models.Message, error)
}

// Classifier decides whether a message is job related
type Classifier interface {
	Classify(ctx context.Context, subject, snippet string) (bool, error)
}

// Store persists classified messages
type Store interface {
	UpsertMessage(ctx context.Context, msg *models.Message) error
	CountMessages(ctx context.Context) (int, error)
}

// Summary reports the outcome of one ingestion run. Attempted vs Succeeded
// makes partial failure observable.
type Summary struct {
	RunID        string    `json:"run_id"`
	Attempted    int       `json:"attempted"`
	Succeeded    int       `json:"succeeded"`
	TotalInStore int       `json:"total_in_store"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Pipeline drives one ingestion pass: list ids, then fetch, classify, and
// upsert each message independently.
type Pipeline struct {
	source     Source
	classifier Classifier
	store      Store
	logger     *slog.Logger
}

// New creates a new ingestion pipeline
func New(source Source, classifier Classifier, store Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		source:     source,
		classifier: classifier,
		store:      store,
		logger:     logger.With("component", "pipeline"),
	}
}

// Run ingests up to maxResults messages. A failure on one message is
// logged and counted, never aborting the batch; the run only errors when
// the source cannot produce identifiers at all. Cancellation takes effect
// between messages, not inside one.
func (p *Pipeline) Run(ctx context.Context, maxResults int64) (Summary, error) {
	summary := Summary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}
	logger := p.logger.With("run_id", summary.RunID)
	logger.Info("starting ingestion run", "max_results", maxResults)

	ids, err := p.source.ListMessageIDs(ctx, maxResults)
	if err != nil {
		return summary, fmt.Errorf("listing messages: %w", err)
	}

	summary.Attempted = len(ids)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			logger.Warn("run cancelled", "processed", summary.Succeeded)
			break
		}
		if err := p.ingestOne(ctx, id); err != nil {
			logger.Warn("message failed", "message_id", id, "error", err)
			continue
		}
		summary.Succeeded++
	}

	total, err := p.store.CountMessages(ctx)
	if err != nil {
		logger.Warn("failed to count stored messages", "error", err)
	}
	summary.TotalInStore = total
	summary.FinishedAt = time.Now().UTC()

	logger.Info("ingestion run finished",
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"total_in_store", summary.TotalInStore,
		"duration", summary.FinishedAt.Sub(summary.StartedAt))

	return summary, nil
}

func (p *Pipeline) ingestOne(ctx context.Context, id string) error {
	msg, err := p.source.GetMessage(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	isJob, err := p.classifier.Classify(ctx, msg.Subject, msg.Snippet)
	if err != nil {
		// Skip rather than abort: the message can be re-classified on the
		// next sync once the backend recovers.
		return fmt.Errorf("classify: %w", err)
	}
	msg.IsJobRelated = &isJob

	if err := p.store.UpsertMessage(ctx, msg); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}
