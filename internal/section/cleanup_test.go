package section

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/sendrec/storefront/internal/database"
)

func fastRetries(t *testing.T) {
	t.Helper()
	previous := retryBackoff
	retryBackoff = time.Millisecond
	t.Cleanup(func() { retryBackoff = previous })
}

func TestPurgeAbandonedUploads_DeletesAndForgets(t *testing.T) {
	mock := newMock(t)
	storage := &mockStorage{}

	mock.ExpectQuery(`SELECT file_key FROM pending_uploads`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"file_key"}).
			AddRow("sections/a.mp4").
			AddRow("sections/b.jpg"))
	mock.ExpectExec(`DELETE FROM pending_uploads WHERE file_key = \$1`).
		WithArgs("sections/a.mp4").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM pending_uploads WHERE file_key = \$1`).
		WithArgs("sections/b.jpg").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	PurgeAbandonedUploads(context.Background(), mock, storage, time.Hour)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
	if len(storage.deletedKeys) != 2 {
		t.Errorf("expected 2 deletes, got %v", storage.deletedKeys)
	}
}

func TestPurgeAbandonedUploads_NothingPending(t *testing.T) {
	mock := newMock(t)
	storage := &mockStorage{}

	mock.ExpectQuery(`SELECT file_key FROM pending_uploads`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"file_key"}))

	PurgeAbandonedUploads(context.Background(), mock, storage, time.Hour)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
	if len(storage.deletedKeys) != 0 {
		t.Errorf("expected no deletes, got %v", storage.deletedKeys)
	}
}

func TestPurgeAbandonedUploads_KeepsRowWhenStorageFails(t *testing.T) {
	fastRetries(t)
	mock := newMock(t)
	storage := &mockStorage{deleteErr: errors.New("s3 down")}

	mock.ExpectQuery(`SELECT file_key FROM pending_uploads`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"file_key"}).AddRow("sections/a.mp4"))

	PurgeAbandonedUploads(context.Background(), mock, storage, time.Hour)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected row removal: %v", err)
	}
	if len(storage.deletedKeys) != 3 {
		t.Errorf("expected 3 delete attempts, got %d", len(storage.deletedKeys))
	}
}

func TestPurgeAbandonedUploads_QueryError(t *testing.T) {
	mock := newMock(t)
	storage := &mockStorage{}

	mock.ExpectQuery(`SELECT file_key FROM pending_uploads`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	PurgeAbandonedUploads(context.Background(), mock, storage, time.Hour)

	if len(storage.deletedKeys) != 0 {
		t.Errorf("expected no deletes, got %v", storage.deletedKeys)
	}
}

func TestDeleteWithRetry_StopsOnCancel(t *testing.T) {
	previous := retryBackoff
	retryBackoff = time.Hour
	t.Cleanup(func() { retryBackoff = previous })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	storage := &mockStorage{deleteErr: errors.New("s3 down")}

	err := deleteWithRetry(ctx, storage, "sections/a.mp4", 3)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(storage.deletedKeys) != 1 {
		t.Errorf("expected a single attempt before cancellation, got %d", len(storage.deletedKeys))
	}
}

type signalDB struct {
	database.DBTX
	queried chan struct{}
}

func (d *signalDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	select {
	case d.queried <- struct{}{}:
	default:
	}
	return nil, errors.New("not connected")
}

func TestStartCleanupLoop_RunsUntilCancelled(t *testing.T) {
	db := &signalDB{queried: make(chan struct{}, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartCleanupLoop(ctx, db, &mockStorage{}, 10*time.Millisecond, time.Hour)

	select {
	case <-db.queried:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup loop never ran")
	}
}
