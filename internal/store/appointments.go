package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bookline/internal/domain"
)

type AppointmentRepository interface {
	// Book consumes the earliest Available slot for the appointment's
	// professional whose date falls within [windowStart, windowEnd] and
	// inserts the appointment referencing it, all in one transaction.
	// No consumable slot yields ErrNoAvailability.
	Book(ctx context.Context, appt domain.Appointment, windowStart, windowEnd time.Time) (domain.Appointment, error)
	ByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	// Cancel marks the appointment Cancelled and releases its slot back to
	// Available in the same transaction.
	Cancel(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	// Reschedule swaps the appointment onto a slot in the new window,
	// releasing the previously consumed one.
	Reschedule(ctx context.Context, appt domain.Appointment, windowStart, windowEnd time.Time) (domain.Appointment, error)
	Update(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
}
