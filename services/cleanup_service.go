package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	apperrors "github.com/consultorio-web/consultorio-backend/errors"
	"github.com/consultorio-web/consultorio-backend/internal/storage"
	"github.com/consultorio-web/consultorio-backend/internal/store"
	"github.com/consultorio-web/consultorio-backend/logger"
	"github.com/consultorio-web/consultorio-backend/types"
	"go.uber.org/zap"
)

const cleanupBatchSize = 50

// CleanupService retries file deletions that failed after their row was gone.
type CleanupService struct {
	store       store.CleanupStore
	files       FileRemover
	maxAttempts int
	log         *zap.SugaredLogger
	// mu keeps the background loop and a manual run from racing on the
	// same records.
	mu sync.Mutex
}

func NewCleanupService(s store.CleanupStore, files FileRemover, maxAttempts int) *CleanupService {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &CleanupService{
		store:       s,
		files:       files,
		maxAttempts: maxAttempts,
		log:         logger.GetLogger().Named("storage_cleanup"),
	}
}

// Enqueue implements CleanupQueue. Failing to record the URL only leaves an
// orphaned file, so the error is logged.
func (s *CleanupService) Enqueue(ctx context.Context, url, reason string) {
	if err := s.store.Enqueue(ctx, url, reason); err != nil {
		s.log.Errorw("Failed to queue file for cleanup", "url", url, "error", err)
	}
}

func (s *CleanupService) List(ctx context.Context) ([]*types.CleanupRecord, error) {
	records, err := s.store.ListPending(ctx, math.MaxInt32, 500)
	if err != nil {
		return nil, translateStoreError(err, "Cleanup record", "")
	}
	return records, nil
}

// ProcessPending retries one batch of records below the attempt limit.
func (s *CleanupService) ProcessPending(ctx context.Context) (*types.CleanupResult, error) {
	if s.files == nil {
		return nil, apperrors.MissingConfiguration("File storage is not configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.store.ListPending(ctx, s.maxAttempts, cleanupBatchSize)
	if err != nil {
		return nil, translateStoreError(err, "Cleanup record", "")
	}

	result := &types.CleanupResult{}
	for _, rec := range records {
		result.Processed++
		err := s.files.Delete(ctx, rec.URL)
		if err == nil || errors.Is(err, storage.ErrNotHosted) {
			if delErr := s.store.Delete(ctx, rec.ID); delErr != nil {
				s.log.Errorw("Failed to remove cleanup record", "id", rec.ID, "error", delErr)
			}
			result.Deleted++
			continue
		}
		result.Failed++
		if markErr := s.store.MarkFailed(ctx, rec.ID, err.Error()); markErr != nil {
			s.log.Errorw("Failed to update cleanup record", "id", rec.ID, "error", markErr)
		}
		if rec.Intentos+1 >= s.maxAttempts {
			s.log.Warnw("Giving up on stored file deletion", "url", rec.URL, "attempts", rec.Intentos+1, "error", err)
		}
	}

	if result.Processed > 0 {
		s.log.Infow("Storage cleanup pass finished",
			"processed", result.Processed,
			"deleted", result.Deleted,
			"failed", result.Failed)
	}
	return result, nil
}

// Run processes the queue every interval until ctx is cancelled.
func (s *CleanupService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Infow("Storage cleanup loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Storage cleanup loop stopped")
			return
		case <-ticker.C:
			if _, err := s.ProcessPending(ctx); err != nil {
				s.log.Errorw("Storage cleanup pass failed", "error", err)
			}
		}
	}
}
