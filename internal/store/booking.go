package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"bookline/internal/domain"
)

// BookingTx is the set of writes available inside a professional's
// booking transaction.
type BookingTx interface {
	AvailableSlots(ctx context.Context, professionalID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.ScheduleSlot, error)
	// MarkSlot transitions a slot between statuses; a slot no longer in the
	// from status yields ErrSlotTaken.
	MarkSlot(ctx context.Context, slotID uuid.UUID, from, to domain.SlotStatus) error
	CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	AppointmentByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	UpdateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
}
