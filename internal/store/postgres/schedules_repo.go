package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/YosefHayim/get-barber-sub001/internal/domain"
	"github.com/YosefHayim/get-barber-sub001/internal/store"
)

type ScheduleRepo struct {
	db *bun.DB
}

func NewScheduleRepo(db *bun.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

func (r *ScheduleRepo) Create(ctx context.Context, sched domain.RecurringSchedule) (domain.RecurringSchedule, error) {
	m := sched
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.RecurringSchedule{}, err
	}
	return m, nil
}

func (r *ScheduleRepo) Get(ctx context.Context, id uuid.UUID) (domain.RecurringSchedule, error) {
	var m domain.RecurringSchedule
	err := r.db.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RecurringSchedule{}, store.ErrNotFound
		}
		return domain.RecurringSchedule{}, err
	}
	return m, nil
}

func (r *ScheduleRepo) Update(ctx context.Context, sched domain.RecurringSchedule) (domain.RecurringSchedule, error) {
	m := sched
	res, err := r.db.NewUpdate().Model(&m).WherePK().Exec(ctx)
	if err != nil {
		return domain.RecurringSchedule{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.RecurringSchedule{}, err
	}
	if affected == 0 {
		return domain.RecurringSchedule{}, store.ErrNotFound
	}
	return m, nil
}

func (r *ScheduleRepo) ListForCustomer(ctx context.Context, customerID string) ([]domain.RecurringSchedule, error) {
	var rows []domain.RecurringSchedule
	err := r.db.NewSelect().
		Model(&rows).
		Where("customer_id = ?", customerID).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScheduleRepo) ListForBarber(ctx context.Context, barberID string) ([]domain.RecurringSchedule, error) {
	var rows []domain.RecurringSchedule
	err := r.db.NewSelect().
		Model(&rows).
		Where("barber_id = ?", barberID).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScheduleRepo) ListDue(ctx context.Context, asOf time.Time) ([]domain.RecurringSchedule, error) {
	var rows []domain.RecurringSchedule
	err := r.db.NewSelect().
		Model(&rows).
		Where("is_active = TRUE").
		Where("is_paused = FALSE").
		Where("next_booking_date IS NOT NULL").
		Where("next_booking_date <= ?", asOf).
		OrderExpr("next_booking_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScheduleRepo) CreateInstance(ctx context.Context, inst domain.RecurringBookingInstance) (domain.RecurringBookingInstance, error) {
	m := inst
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.RecurringBookingInstance{}, err
	}
	return m, nil
}

func (r *ScheduleRepo) ListInstances(ctx context.Context, scheduleID uuid.UUID) ([]domain.RecurringBookingInstance, error) {
	var rows []domain.RecurringBookingInstance
	err := r.db.NewSelect().
		Model(&rows).
		Where("schedule_id = ?", scheduleID).
		OrderExpr("scheduled_date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScheduleRepo) InScheduleTransaction(ctx context.Context, scheduleID uuid.UUID, fn func(ctx context.Context, tx store.ScheduleTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockSchedule(ctx, tx, scheduleID); err != nil {
			return err
		}
		return fn(ctx, scheduleTx{tx: tx})
	})
}

func lockSchedule(ctx context.Context, tx bun.Tx, scheduleID uuid.UUID) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", scheduleID.String()).Exec(ctx)
	return err
}

type scheduleTx struct {
	tx bun.Tx
}

func (t scheduleTx) GetSchedule(ctx context.Context, id uuid.UUID) (domain.RecurringSchedule, error) {
	var m domain.RecurringSchedule
	err := t.tx.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RecurringSchedule{}, store.ErrNotFound
		}
		return domain.RecurringSchedule{}, err
	}
	return m, nil
}

func (t scheduleTx) UpdateSchedule(ctx context.Context, sched domain.RecurringSchedule) (domain.RecurringSchedule, error) {
	m := sched
	res, err := t.tx.NewUpdate().Model(&m).WherePK().Exec(ctx)
	if err != nil {
		return domain.RecurringSchedule{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.RecurringSchedule{}, err
	}
	if affected == 0 {
		return domain.RecurringSchedule{}, store.ErrNotFound
	}
	return m, nil
}

func (t scheduleTx) CreateInstance(ctx context.Context, inst domain.RecurringBookingInstance) (domain.RecurringBookingInstance, error) {
	m := inst
	if _, err := t.tx.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.RecurringBookingInstance{}, err
	}
	return m, nil
}

func (t scheduleTx) CreateBooking(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	m := booking
	if _, err := t.tx.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.Booking{}, err
	}
	return m, nil
}
