package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type SlotStatus string

const (
	SlotStatusAvailable SlotStatus = "Available"
	SlotStatusBooked    SlotStatus = "Booked"
	SlotStatusCancelled SlotStatus = "Cancelled"
)

// ScheduleSlot is one bookable window a professional has declared. Slots are
// created out-of-band; booking consumes one by flipping it to Booked.
type ScheduleSlot struct {
	bun.BaseModel `bun:"table:schedule_slots"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid"`
	ProfessionalID uuid.UUID  `bun:"professional_id,notnull,type:uuid"`
	Date           time.Time  `bun:"date,notnull"`
	Status         SlotStatus `bun:"status,notnull"`
	CreatedAt      time.Time  `bun:"created_at,notnull"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull"`
}

func (s *ScheduleSlot) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if s.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			s.ID = id
		}
		if s.Status == "" {
			s.Status = SlotStatusAvailable
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if s.UpdatedAt.IsZero() {
			s.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		s.UpdatedAt = now
	}
	return nil
}
