package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/gobank/internal/domain"
)

const (
	insertSagaSQL = `INSERT INTO transfer_sagas
    (transfer_id, from_account, to_account, amount, status, reason, created_at, updated_at)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)
ON CONFLICT (transfer_id) DO NOTHING`

	selectSagaSQL = `SELECT transfer_id, from_account, to_account, amount::text, status, reason, created_at, updated_at
FROM transfer_sagas
WHERE transfer_id = $1`

	selectSagaStatusForUpdateSQL = `SELECT status FROM transfer_sagas WHERE transfer_id = $1 FOR UPDATE`

	updateSagaStatusSQL = `UPDATE transfer_sagas
SET status = $2, reason = $3, updated_at = $4
WHERE transfer_id = $1`

	selectStaleSagasSQL = `SELECT transfer_id, from_account, to_account, amount::text, status, reason, created_at, updated_at
FROM transfer_sagas
WHERE status = $1 AND updated_at < $2
ORDER BY updated_at
LIMIT $3`
)

type sagaDB interface {
	txBeginner
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// SagaRepository implements usecase.SagaStore.
type SagaRepository struct {
	db      sagaDB
	retrier *Retrier
	now     func() time.Time
}

// NewSagaRepository creates a new SagaRepository. db is usually a *pgxpool.Pool.
func NewSagaRepository(db sagaDB, retrier *Retrier) *SagaRepository {
	return &SagaRepository{
		db:      db,
		retrier: retrier,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts the saga unless a row with the same transfer id exists.
func (r *SagaRepository) Create(ctx context.Context, saga *domain.TransferSaga) error {
	createdAt := saga.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}

	updatedAt := saga.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	err := r.retrier.Retry(ctx, func() error {
		_, err := r.db.Exec(ctx, insertSagaSQL,
			saga.TransferID,
			saga.FromAccount.String(),
			saga.ToAccount.String(),
			saga.Amount.String(),
			string(saga.Status),
			saga.Reason,
			createdAt,
			updatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create saga %s: %w", saga.TransferID, err)
	}

	return nil
}

// Get loads a saga by transfer id.
func (r *SagaRepository) Get(ctx context.Context, transferID string) (*domain.TransferSaga, error) {
	saga, err := scanSaga(r.db.QueryRow(ctx, selectSagaSQL, transferID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTransferNotFound, transferID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load saga %s: %w", transferID, err)
	}

	return saga, nil
}

// UpdateStatus moves the saga to status. A finished saga only accepts its own
// status again.
func (r *SagaRepository) UpdateStatus(ctx context.Context, transferID string, status domain.SagaStatus, reason string) error {
	return r.retrier.Retry(ctx, func() error {
		return inTx(ctx, r.db, func(tx pgx.Tx) error {
			var current string
			if err := tx.QueryRow(ctx, selectSagaStatusForUpdateSQL, transferID).Scan(&current); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("%w: %s", domain.ErrTransferNotFound, transferID)
				}
				return err
			}

			currentStatus, err := domain.ParseSagaStatus(current)
			if err != nil {
				return err
			}

			if currentStatus.IsTerminal() && currentStatus != status {
				return fmt.Errorf("%w: %s is %s", domain.ErrSagaFinished, transferID, currentStatus)
			}

			_, err = tx.Exec(ctx, updateSagaStatusSQL, transferID, string(status), reason, r.now())

			return err
		})
	})
}

// ListStale returns up to limit sagas in status last touched before olderThan, oldest first.
func (r *SagaRepository) ListStale(ctx context.Context, status domain.SagaStatus, olderThan time.Time, limit int) ([]*domain.TransferSaga, error) {
	rows, err := r.db.Query(ctx, selectStaleSagasSQL, string(status), olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale sagas: %w", err)
	}
	defer rows.Close()

	var sagas []*domain.TransferSaga
	for rows.Next() {
		saga, err := scanSaga(rows)
		if err != nil {
			return nil, err
		}
		sagas = append(sagas, saga)
	}

	return sagas, rows.Err()
}

func scanSaga(row pgx.Row) (*domain.TransferSaga, error) {
	var (
		saga             domain.TransferSaga
		from, to, amount string
		status           string
	)

	if err := row.Scan(&saga.TransferID, &from, &to, &amount, &status, &saga.Reason, &saga.CreatedAt, &saga.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if saga.Amount, err = domain.ParseMoney(amount); err != nil {
		return nil, fmt.Errorf("saga %s: %w", saga.TransferID, err)
	}

	if saga.Status, err = domain.ParseSagaStatus(status); err != nil {
		return nil, fmt.Errorf("saga %s: %w", saga.TransferID, err)
	}

	saga.FromAccount = domain.AccountNumber(from)
	saga.ToAccount = domain.AccountNumber(to)

	return &saga, nil
}
