package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"bookline/internal/domain"
	"bookline/internal/store"
)

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type bookingTx struct {
	tx bun.Tx
}

func (r *AppointmentRepo) Book(ctx context.Context, appt domain.Appointment, windowStart, windowEnd time.Time) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.InProfessionalTransaction(ctx, appt.ProfessionalID, func(ctx context.Context, tx store.BookingTx) error {
		a, err := bookAppointment(ctx, tx, appt, windowStart, windowEnd)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func bookAppointment(ctx context.Context, tx store.BookingTx, appt domain.Appointment, windowStart, windowEnd time.Time) (domain.Appointment, error) {
	slot, err := consumeFirstAvailableSlot(ctx, tx, appt.ProfessionalID, windowStart, windowEnd)
	if err != nil {
		return domain.Appointment{}, err
	}
	appt.ScheduleID = slot.ID
	a, err := tx.CreateAppointment(ctx, appt)
	if errors.Is(err, store.ErrSlotTaken) {
		// The slot carried a live appointment despite reading Available. The
		// unique index has already aborted the transaction, so there is no
		// next slot to fall through to.
		return domain.Appointment{}, store.ErrNoAvailability
	}
	if err != nil {
		return domain.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentRepo) ByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var a domain.Appointment
	err := r.db.NewSelect().
		Model(&a).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentRepo) Cancel(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	appt, err := r.ByID(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}

	var out domain.Appointment
	err = r.InProfessionalTransaction(ctx, appt.ProfessionalID, func(ctx context.Context, tx store.BookingTx) error {
		a, err := cancelAppointment(ctx, tx, id)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func cancelAppointment(ctx context.Context, tx store.BookingTx, id uuid.UUID) (domain.Appointment, error) {
	a, err := tx.AppointmentByID(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	// A concurrent cancel may have won between the caller's read and this
	// lock. Its release already ran, and the slot may back a newer
	// appointment by now, so neither write may repeat.
	if a.Status == domain.AppointmentStatusCancelled {
		return a, nil
	}
	a.Status = domain.AppointmentStatusCancelled
	a, err = tx.UpdateAppointment(ctx, a)
	if err != nil {
		return domain.Appointment{}, err
	}
	// The slot goes back on the market. A slot already moved out of
	// Booked out-of-band is left alone.
	if err := tx.MarkSlot(ctx, a.ScheduleID, domain.SlotStatusBooked, domain.SlotStatusAvailable); err != nil &&
		!errors.Is(err, store.ErrSlotTaken) {
		return domain.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentRepo) Reschedule(ctx context.Context, appt domain.Appointment, windowStart, windowEnd time.Time) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.InProfessionalTransaction(ctx, appt.ProfessionalID, func(ctx context.Context, tx store.BookingTx) error {
		a, err := rescheduleAppointment(ctx, tx, appt, windowStart, windowEnd)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func rescheduleAppointment(ctx context.Context, tx store.BookingTx, appt domain.Appointment, windowStart, windowEnd time.Time) (domain.Appointment, error) {
	slot, err := consumeFirstAvailableSlot(ctx, tx, appt.ProfessionalID, windowStart, windowEnd)
	if err != nil {
		return domain.Appointment{}, err
	}
	if err := tx.MarkSlot(ctx, appt.ScheduleID, domain.SlotStatusBooked, domain.SlotStatusAvailable); err != nil &&
		!errors.Is(err, store.ErrSlotTaken) {
		return domain.Appointment{}, err
	}
	appt.ScheduleID = slot.ID
	a, err := tx.UpdateAppointment(ctx, appt)
	if errors.Is(err, store.ErrSlotTaken) {
		return domain.Appointment{}, store.ErrNoAvailability
	}
	if err != nil {
		return domain.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentRepo) Update(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.InProfessionalTransaction(ctx, appt.ProfessionalID, func(ctx context.Context, tx store.BookingTx) error {
		a, err := tx.UpdateAppointment(ctx, appt)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

// InProfessionalTransaction serializes writes against one professional's
// schedule: the advisory lock closes the check-then-create race between two
// bookings reading the same slot as Available.
func (r *AppointmentRepo) InProfessionalTransaction(ctx context.Context, professionalID uuid.UUID, fn func(ctx context.Context, tx store.BookingTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockProfessionalSchedule(ctx, tx, professionalID); err != nil {
			return err
		}
		return fn(ctx, bookingTx{tx: tx})
	})
}

func lockProfessionalSchedule(ctx context.Context, tx bun.Tx, professionalID uuid.UUID) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", professionalID.String()).Exec(ctx)
	return err
}

// consumeFirstAvailableSlot walks the professional's Available slots in the
// window, earliest date first, and flips the first one it wins to Booked.
func consumeFirstAvailableSlot(ctx context.Context, tx store.BookingTx, professionalID uuid.UUID, windowStart, windowEnd time.Time) (domain.ScheduleSlot, error) {
	slots, err := tx.AvailableSlots(ctx, professionalID, windowStart, windowEnd)
	if err != nil {
		return domain.ScheduleSlot{}, err
	}

	for _, slot := range slots {
		err := tx.MarkSlot(ctx, slot.ID, domain.SlotStatusAvailable, domain.SlotStatusBooked)
		if errors.Is(err, store.ErrSlotTaken) {
			continue
		}
		if err != nil {
			return domain.ScheduleSlot{}, err
		}
		slot.Status = domain.SlotStatusBooked
		return slot, nil
	}

	return domain.ScheduleSlot{}, store.ErrNoAvailability
}

func (r bookingTx) AvailableSlots(ctx context.Context, professionalID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.ScheduleSlot, error) {
	var rows []domain.ScheduleSlot
	err := r.tx.NewSelect().
		Model(&rows).
		Where("professional_id = ?", professionalID).
		Where("date >= ?", windowStart).
		Where("date <= ?", windowEnd).
		Where("status = ?", domain.SlotStatusAvailable).
		OrderExpr("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r bookingTx) MarkSlot(ctx context.Context, slotID uuid.UUID, from, to domain.SlotStatus) error {
	res, err := r.tx.NewUpdate().
		Model((*domain.ScheduleSlot)(nil)).
		Set("status = ?", to).
		Set("updated_at = now()").
		Where("id = ?", slotID).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrSlotTaken
	}
	return nil
}

func (r bookingTx) CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	if _, err := r.tx.NewInsert().Model(&m).Exec(ctx); err != nil {
		// the partial unique index on active appointments per slot
		if isUniqueViolation(err) {
			return domain.Appointment{}, store.ErrSlotTaken
		}
		return domain.Appointment{}, err
	}
	return m, nil
}

func (r bookingTx) AppointmentByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var a domain.Appointment
	err := r.tx.NewSelect().
		Model(&a).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return a, nil
}

func (r bookingTx) UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	res, err := r.tx.NewUpdate().
		Model(&m).
		Column("status", "schedule_id", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Appointment{}, store.ErrSlotTaken
		}
		return domain.Appointment{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 0 {
		return domain.Appointment{}, store.ErrNotFound
	}
	return m, nil
}
