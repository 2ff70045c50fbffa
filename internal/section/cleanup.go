package section

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sendrec/storefront/internal/database"
)

// retryBackoff is the wait before the second delete attempt; it doubles per attempt.
var retryBackoff = time.Second

func deleteWithRetry(ctx context.Context, storage ObjectStorage, key string, maxAttempts int) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := retryBackoff << uint(attempt-1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
		lastErr = storage.Remove(ctx, key)
		if lastErr == nil {
			return nil
		}
		slog.Error("storage: delete attempt failed", "attempt", attempt+1, "max_attempts", maxAttempts, "key", key, "error", lastErr)
	}
	return fmt.Errorf("all %d delete attempts failed for %s: %w", maxAttempts, key, lastErr)
}

// PurgeAbandonedUploads removes objects whose upload URL was issued more than
// maxAge ago but which never became part of a section.
func PurgeAbandonedUploads(ctx context.Context, db database.DBTX, storage ObjectStorage, maxAge time.Duration) {
	rows, err := db.Query(ctx,
		`SELECT file_key FROM pending_uploads
		 WHERE created_at < $1
		 ORDER BY created_at
		 LIMIT 50`,
		time.Now().Add(-maxAge),
	)
	if err != nil {
		slog.Error("cleanup: failed to query abandoned uploads", "error", err)
		return
	}

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			slog.Error("cleanup: failed to scan file key", "error", err)
			continue
		}
		keys = append(keys, key)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		slog.Error("cleanup: row iteration error", "error", err)
	}

	for _, key := range keys {
		if err := deleteWithRetry(ctx, storage, key, 3); err != nil {
			slog.Error("cleanup: failed to delete abandoned upload", "key", key, "error", err)
			continue
		}
		if _, err := db.Exec(ctx, `DELETE FROM pending_uploads WHERE file_key = $1`, key); err != nil {
			slog.Error("cleanup: failed to forget upload", "key", key, "error", err)
		}
	}
	if len(keys) > 0 {
		slog.Info("cleanup: purged abandoned uploads", "count", len(keys))
	}
}

func StartCleanupLoop(ctx context.Context, db database.DBTX, storage ObjectStorage, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("cleanup: shutting down")
				return
			case <-ticker.C:
				PurgeAbandonedUploads(ctx, db, storage, maxAge)
			}
		}
	}()
}
