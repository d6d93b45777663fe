package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"github.com/google/uuid"

	"github.com/YosefHayim/get-barber-sub001/internal/domain"
	"github.com/YosefHayim/get-barber-sub001/internal/store"
)

// queueOrder is the queue ordering contract in SQL form.
const queueOrder = "CASE priority WHEN 'vip' THEN 0 WHEN 'high' THEN 1 ELSE 2 END ASC, created_at ASC"

type WaitlistRepo struct {
	db *bun.DB
}

func NewWaitlistRepo(db *bun.DB) *WaitlistRepo {
	return &WaitlistRepo{db: db}
}

func (r *WaitlistRepo) Create(ctx context.Context, entry domain.WaitlistEntry) (domain.WaitlistEntry, error) {
	m := entry
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.WaitlistEntry{}, store.ErrDuplicateWaitlist
		}
		return domain.WaitlistEntry{}, err
	}
	return m, nil
}

func (r *WaitlistRepo) Get(ctx context.Context, id uuid.UUID) (domain.WaitlistEntry, error) {
	var m domain.WaitlistEntry
	err := r.db.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WaitlistEntry{}, store.ErrNotFound
		}
		return domain.WaitlistEntry{}, err
	}
	return m, nil
}

func (r *WaitlistRepo) Update(ctx context.Context, entry domain.WaitlistEntry) (domain.WaitlistEntry, error) {
	m := entry
	res, err := r.db.NewUpdate().Model(&m).WherePK().Exec(ctx)
	if err != nil {
		return domain.WaitlistEntry{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WaitlistEntry{}, err
	}
	if affected == 0 {
		return domain.WaitlistEntry{}, store.ErrNotFound
	}
	return m, nil
}

func (r *WaitlistRepo) FindWaiting(ctx context.Context, customerID, barberID string) (domain.WaitlistEntry, error) {
	var m domain.WaitlistEntry
	err := r.db.NewSelect().
		Model(&m).
		Where("customer_id = ?", customerID).
		Where("barber_id = ?", barberID).
		Where("status = ?", domain.WaitlistStatusWaiting).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.WaitlistEntry{}, store.ErrNotFound
		}
		return domain.WaitlistEntry{}, err
	}
	return m, nil
}

func (r *WaitlistRepo) ListWaiting(ctx context.Context, barberID string) ([]domain.WaitlistEntry, error) {
	var rows []domain.WaitlistEntry
	err := r.db.NewSelect().
		Model(&rows).
		Where("barber_id = ?", barberID).
		Where("status = ?", domain.WaitlistStatusWaiting).
		OrderExpr(queueOrder).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *WaitlistRepo) ListExpiredNotified(ctx context.Context, asOf time.Time) ([]domain.WaitlistEntry, error) {
	var rows []domain.WaitlistEntry
	err := r.db.NewSelect().
		Model(&rows).
		Where("status = ?", domain.WaitlistStatusNotified).
		Where("expires_at IS NOT NULL").
		Where("expires_at < ?", asOf).
		OrderExpr("expires_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *WaitlistRepo) ClaimWaiting(ctx context.Context, id uuid.UUID, notifiedAt, expiresAt time.Time) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*domain.WaitlistEntry)(nil)).
		Set("status = ?", domain.WaitlistStatusNotified).
		Set("notified_at = ?", notifiedAt).
		Set("expires_at = ?", expiresAt).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("status = ?", domain.WaitlistStatusWaiting).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsMatched(res)
}

func (r *WaitlistRepo) AcceptNotified(ctx context.Context, id uuid.UUID, bookingID uuid.UUID) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*domain.WaitlistEntry)(nil)).
		Set("status = ?", domain.WaitlistStatusBooked).
		Set("booking_id = ?", bookingID).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("status = ?", domain.WaitlistStatusNotified).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsMatched(res)
}

func (r *WaitlistRepo) DeclineNotified(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*domain.WaitlistEntry)(nil)).
		Set("status = ?", domain.WaitlistStatusWaiting).
		Set("notified_at = NULL").
		Set("expires_at = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("status = ?", domain.WaitlistStatusNotified).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsMatched(res)
}

func (r *WaitlistRepo) RevertExpired(ctx context.Context, id uuid.UUID, asOf time.Time) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*domain.WaitlistEntry)(nil)).
		Set("status = ?", domain.WaitlistStatusWaiting).
		Set("notified_at = NULL").
		Set("expires_at = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("status = ?", domain.WaitlistStatusNotified).
		Where("expires_at IS NOT NULL").
		Where("expires_at < ?", asOf).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	return rowsMatched(res)
}

func rowsMatched(res sql.Result) (bool, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
