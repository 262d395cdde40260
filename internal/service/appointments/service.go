package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"bookline/internal/domain"
	"bookline/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ErrNoAvailability means no Available slot for the professional fell inside
// the requested window.
var ErrNoAvailability = errors.New("no available schedule found for the specified time")

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

type Service struct {
	repo store.AppointmentRepository
}

func NewService(repo store.AppointmentRepository) *Service {
	return &Service{repo: repo}
}

type BookInput struct {
	ClientID        uuid.UUID
	ProfessionalID  uuid.UUID
	AppointmentDate string
	StartTime       string
	EndTime         string
}

type BookResult struct {
	AppointmentID   string
	ClientID        string
	ProfessionalID  string
	AppointmentDate string
	StartTime       string
	EndTime         string
	Status          string
}

// Book validates the requested window, consumes a matching Available slot and
// creates a Pending appointment against it.
func (s *Service) Book(ctx context.Context, in BookInput) (BookResult, error) {
	if in.ClientID == uuid.Nil {
		return BookResult{}, validationError("client_id is required")
	}
	if in.ProfessionalID == uuid.Nil {
		return BookResult{}, validationError("professional_id is required")
	}

	windowStart, windowEnd, err := parseWindow(in.AppointmentDate, in.StartTime, in.EndTime)
	if err != nil {
		return BookResult{}, err
	}

	appt := domain.Appointment{
		ClientID:       in.ClientID,
		ProfessionalID: in.ProfessionalID,
		Status:         domain.AppointmentStatusPending,
		CreatedAt:      time.Now().UTC(),
	}

	created, err := s.repo.Book(ctx, appt, windowStart, windowEnd)
	if errors.Is(err, store.ErrNoAvailability) {
		return BookResult{}, ErrNoAvailability
	}
	if err != nil {
		return BookResult{}, err
	}

	return BookResult{
		AppointmentID:   created.ID.String(),
		ClientID:        created.ClientID.String(),
		ProfessionalID:  created.ProfessionalID.String(),
		AppointmentDate: in.AppointmentDate,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		Status:          string(created.Status),
	}, nil
}

type CancelResult struct {
	Message       string
	AppointmentID string
	Status        string
}

// Cancel is idempotent. A missing appointment and an already cancelled one
// are both reported in the result, never as errors.
func (s *Service) Cancel(ctx context.Context, appointmentID uuid.UUID) (CancelResult, error) {
	if appointmentID == uuid.Nil {
		return CancelResult{}, validationError("appointment_id is required")
	}

	appt, err := s.repo.ByID(ctx, appointmentID)
	if errors.Is(err, store.ErrNotFound) {
		return CancelResult{
			Message:       "Appointment not found.",
			AppointmentID: appointmentID.String(),
			Status:        "Failed",
		}, nil
	}
	if err != nil {
		return CancelResult{}, err
	}

	if appt.Status == domain.AppointmentStatusCancelled {
		return CancelResult{
			Message:       "The appointment is already cancelled.",
			AppointmentID: appointmentID.String(),
			Status:        string(domain.AppointmentStatusCancelled),
		}, nil
	}

	cancelled, err := s.repo.Cancel(ctx, appointmentID)
	if err != nil {
		return CancelResult{}, err
	}

	return CancelResult{
		Message:       "Appointment cancelled successfully.",
		AppointmentID: appointmentID.String(),
		Status:        string(cancelled.Status),
	}, nil
}

type UpdateInput struct {
	AppointmentID   uuid.UUID
	AppointmentDate string
	StartTime       string
	EndTime         string
	Status          string
}

type UpdateResult struct {
	Success         bool
	AppointmentID   string
	AppointmentDate string
	StartTime       string
	EndTime         string
	Status          string
	Message         string
}

// Update looks the appointment up, merges only the supplied fields and
// returns the resulting state. A new window re-matches a slot the same way
// booking does, releasing the previously consumed one. Setting the status to
// Cancelled takes the slot-releasing cancel path; a cancelled appointment
// rejects further changes.
func (s *Service) Update(ctx context.Context, in UpdateInput) (UpdateResult, error) {
	if in.AppointmentID == uuid.Nil {
		return UpdateResult{}, validationError("appointment_id is required")
	}

	appt, err := s.repo.ByID(ctx, in.AppointmentID)
	if errors.Is(err, store.ErrNotFound) {
		return UpdateResult{
			Success:       false,
			AppointmentID: in.AppointmentID.String(),
			Message:       "Appointment not found",
		}, nil
	}
	if err != nil {
		return UpdateResult{}, err
	}

	target := appt.Status
	if in.Status != "" {
		status := domain.AppointmentStatus(in.Status)
		if !domain.ValidAppointmentStatus(status) {
			return UpdateResult{}, validationError("invalid status")
		}
		target = status
	}
	statusChanged := target != appt.Status

	windowSupplied := in.AppointmentDate != "" || in.StartTime != "" || in.EndTime != ""

	// A cancelled appointment already released its slot; moving or reviving
	// it would consume a slot no later operation releases.
	if appt.Status == domain.AppointmentStatusCancelled && (windowSupplied || statusChanged) {
		return UpdateResult{}, validationError("a cancelled appointment cannot be updated")
	}
	if windowSupplied && target == domain.AppointmentStatusCancelled {
		return UpdateResult{}, validationError("a new window cannot be combined with a cancellation")
	}

	switch {
	case windowSupplied:
		if in.AppointmentDate == "" || in.StartTime == "" || in.EndTime == "" {
			return UpdateResult{}, validationError("appointment_date, start_time and end_time must be supplied together")
		}
		windowStart, windowEnd, err := parseWindow(in.AppointmentDate, in.StartTime, in.EndTime)
		if err != nil {
			return UpdateResult{}, err
		}
		appt.Status = target
		appt, err = s.repo.Reschedule(ctx, appt, windowStart, windowEnd)
		if errors.Is(err, store.ErrNoAvailability) {
			return UpdateResult{}, ErrNoAvailability
		}
		if err != nil {
			return UpdateResult{}, err
		}
	case target == domain.AppointmentStatusCancelled && statusChanged:
		// Cancellation via update must release the slot the same way the
		// cancel operation does.
		appt, err = s.repo.Cancel(ctx, appt.ID)
		if err != nil {
			return UpdateResult{}, err
		}
	case statusChanged:
		appt.Status = target
		appt, err = s.repo.Update(ctx, appt)
		if err != nil {
			return UpdateResult{}, err
		}
	}

	return UpdateResult{
		Success:         true,
		AppointmentID:   appt.ID.String(),
		AppointmentDate: in.AppointmentDate,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		Status:          string(appt.Status),
		Message:         "Appointment updated successfully",
	}, nil
}

// parseWindow combines a YYYY-MM-DD date with HH:MM bounds and enforces a
// strictly positive window.
func parseWindow(date, startTime, endTime string) (time.Time, time.Time, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return time.Time{}, time.Time{}, validationError("appointment_date must be in YYYY-MM-DD format")
	}
	windowStart, err := time.Parse(dateTimeLayout, date+" "+startTime)
	if err != nil {
		return time.Time{}, time.Time{}, validationError("start_time must be in HH:MM format")
	}
	windowEnd, err := time.Parse(dateTimeLayout, date+" "+endTime)
	if err != nil {
		return time.Time{}, time.Time{}, validationError("end_time must be in HH:MM format")
	}
	if !windowStart.Before(windowEnd) {
		return time.Time{}, time.Time{}, validationError("the appointment's end time must be after its start time")
	}
	return windowStart, windowEnd, nil
}
