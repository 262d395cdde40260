package http

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"bookline/internal/service/appointments"
)

type bookRequest struct {
	ClientID        string `json:"clientId"`
	ProfessionalID  string `json:"professionalId"`
	AppointmentDate string `json:"appointmentDate"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
}

type bookResponse struct {
	AppointmentID   string `json:"appointmentId"`
	ClientID        string `json:"clientId"`
	ProfessionalID  string `json:"professionalId"`
	AppointmentDate string `json:"appointmentDate"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Status          string `json:"status"`
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("route", "book_appointment"))

	var req bookRequest
	if !decodeBody(w, r, &req) {
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "clientId must be a valid uuid")
		return
	}
	professionalID, err := uuid.Parse(req.ProfessionalID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "professionalId must be a valid uuid")
		return
	}

	res, err := s.appointments.Book(r.Context(), appointments.BookInput{
		ClientID:        clientID,
		ProfessionalID:  professionalID,
		AppointmentDate: req.AppointmentDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
	})
	if err != nil {
		s.writeServiceError(w, log, err)
		return
	}

	log.Info("appointment booked",
		slog.String("appointment_id", res.AppointmentID),
		slog.String("professional_id", res.ProfessionalID),
	)
	writeJSON(w, http.StatusOK, bookResponse{
		AppointmentID:   res.AppointmentID,
		ClientID:        res.ClientID,
		ProfessionalID:  res.ProfessionalID,
		AppointmentDate: res.AppointmentDate,
		StartTime:       res.StartTime,
		EndTime:         res.EndTime,
		Status:          res.Status,
	})
}

type cancelResponse struct {
	Message       string `json:"message"`
	AppointmentID string `json:"appointmentId"`
	Status        string `json:"status"`
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("route", "cancel_appointment"))

	id, ok := pathUUID(w, r, "appointmentId")
	if !ok {
		return
	}

	res, err := s.appointments.Cancel(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, cancelResponse{
		Message:       res.Message,
		AppointmentID: res.AppointmentID,
		Status:        res.Status,
	})
}

type updateAppointmentRequest struct {
	ScheduledDate string `json:"scheduledDate"`
	StartTime     string `json:"startTime"`
	EndTime       string `json:"endTime"`
	Status        string `json:"status"`
}

type updateAppointmentResponse struct {
	Success       bool   `json:"success"`
	AppointmentID string `json:"appointmentId"`
	ScheduledDate string `json:"scheduledDate,omitempty"`
	StartTime     string `json:"startTime,omitempty"`
	EndTime       string `json:"endTime,omitempty"`
	Status        string `json:"status,omitempty"`
	Message       string `json:"message"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("route", "update_appointment"))

	id, ok := pathUUID(w, r, "appointmentId")
	if !ok {
		return
	}

	var req updateAppointmentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.appointments.Update(r.Context(), appointments.UpdateInput{
		AppointmentID:   id,
		AppointmentDate: req.ScheduledDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Status:          req.Status,
	})
	if err != nil {
		s.writeServiceError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, updateAppointmentResponse{
		Success:       res.Success,
		AppointmentID: res.AppointmentID,
		ScheduledDate: res.AppointmentDate,
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
		Status:        res.Status,
		Message:       res.Message,
	})
}
