// Package summary serves cached presence summaries per student.
package summary

import (
	"context"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"attendance-tracker/internal/attendance"
	"attendance-tracker/internal/metrics"
	"attendance-tracker/internal/model"
	"attendance-tracker/internal/queue"
	"attendance-tracker/internal/stats"
)

const keyPrefix = "attendance:summary:"

// Key is the cache key of a student's summary.
func Key(studentID int64) string {
	return keyPrefix + strconv.FormatInt(studentID, 10)
}

// HistorySource reads a student's marks.
type HistorySource interface {
	History(ctx context.Context, studentID int64, f attendance.HistoryFilter) ([]model.HistoryRow, error)
}

// Service computes summaries from full history and caches them.
type Service struct {
	source HistorySource
	cache  Cache
	ttl    time.Duration
}

// NewService caches summaries of source's history for ttl.
func NewService(source HistorySource, cache Cache, ttl time.Duration) *Service {
	return &Service{source: source, cache: cache, ttl: ttl}
}

// Get returns the student's summary, from cache when possible. Cache
// failures fall back to computing from the ledger.
func (s *Service) Get(ctx context.Context, studentID int64) (stats.Summary, error) {
	key := Key(studentID)
	cached, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.SummaryCacheLookups.WithLabelValues("error").Inc()
		logger.Error.Printf("summary cache read %s: %v", key, err)
	case ok:
		metrics.SummaryCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.SummaryCacheLookups.WithLabelValues("miss").Inc()
	}
	return s.Refresh(ctx, studentID)
}

// Refresh recomputes and stores a student's summary.
func (s *Service) Refresh(ctx context.Context, studentID int64) (stats.Summary, error) {
	rows, err := s.source.History(ctx, studentID, attendance.HistoryFilter{})
	if err != nil {
		return stats.Summary{}, err
	}
	sum := stats.Summarize(rows)
	if err := s.cache.Set(ctx, Key(studentID), sum, s.ttl); err != nil {
		logger.Error.Printf("summary cache write for student %d: %v", studentID, err)
	}
	return sum, nil
}

// Invalidate drops cached summaries so the next read recomputes them.
func (s *Service) Invalidate(ctx context.Context, studentIDs ...int64) error {
	keys := make([]string, 0, len(studentIDs))
	for _, id := range studentIDs {
		keys = append(keys, Key(id))
	}
	return s.cache.Delete(ctx, keys...)
}

// HandleMessage re-warms the summaries named by a sheet.saved message.
// Other message types are ignored.
func (s *Service) HandleMessage(ctx context.Context, msg queue.Message) error {
	if msg.Type != queue.TypeSheetSaved {
		logger.Debug.Printf("ignoring message %s of type %q", msg.ID, msg.Type)
		return nil
	}
	var ev queue.SheetSaved
	if err := msg.Decode(&ev); err != nil {
		return err
	}
	for _, id := range ev.Students {
		if _, err := s.Refresh(ctx, id); err != nil {
			return err
		}
	}
	logger.Debug.Printf("message %s: refreshed %d summaries", msg.ID, len(ev.Students))
	return nil
}

// Run consumes q until ctx is done, re-warming summaries. A failed message
// is logged and dropped; the next write publishes a fresh one.
func (s *Service) Run(ctx context.Context, q queue.Queue) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return err
	}
	logger.Info.Println("summary worker started, waiting for messages...")
	for msg := range messages {
		if err := s.HandleMessage(ctx, msg); err != nil {
			logger.Error.Printf("message %s failed: %v", msg.ID, err)
		}
	}
	logger.Info.Println("summary worker stopped")
	return nil
}
