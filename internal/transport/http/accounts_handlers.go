package http

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"bookline/internal/service/accounts"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	TimeZone  string `json:"time_zone"`
}

type registerResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("route", "register"))

	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.accounts.Register(r.Context(), accounts.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		TimeZone:  req.TimeZone,
	})
	if err != nil {
		s.writeServiceError(w, log, err)
		return
	}

	if !res.Success {
		log.Info("registration rejected", slog.String("reason", "duplicate_email"))
	}
	writeJSON(w, http.StatusOK, registerResponse{
		Success: res.Success,
		UserID:  res.UserID,
		Message: res.Message,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("route", "login"))

	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
	})
}

type profileResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	TimeZone  string `json:"timeZone,omitempty"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("route", "get_profile"))

	email, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing token")
		return
	}

	res, err := s.accounts.Profile(r.Context(), email)
	if err != nil {
		s.writeServiceError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:        res.ID,
		FirstName: res.FirstName,
		LastName:  res.LastName,
		Email:     res.Email,
		TimeZone:  res.TimeZone,
	})
}

type updateProfileRequest struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	TimeZone  string `json:"timeZone"`
}

type updateProfileResponse struct {
	UserID        string   `json:"userId"`
	UpdatedFields []string `json:"updatedFields"`
	Message       string   `json:"message"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	log := s.log.With(slog.String("route", "update_profile"))

	var req updateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "userId must be a valid uuid")
		return
	}

	res, err := s.accounts.UpdateProfile(r.Context(), accounts.UpdateProfileInput{
		UserID:    userID,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		TimeZone:  req.TimeZone,
	})
	if err != nil {
		s.writeServiceError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, updateProfileResponse{
		UserID:        res.UserID,
		UpdatedFields: res.UpdatedFields,
		Message:       res.Message,
	})
}
