package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"bookline/internal/service/accounts"
	"bookline/internal/service/appointments"
	"bookline/internal/store"
)

type accountsService interface {
	Register(ctx context.Context, in accounts.RegisterInput) (accounts.RegisterResult, error)
	Login(ctx context.Context, email, password string) (accounts.LoginResult, error)
	Profile(ctx context.Context, email string) (accounts.ProfileView, error)
	UpdateProfile(ctx context.Context, in accounts.UpdateProfileInput) (accounts.UpdateProfileResult, error)
}

type appointmentsService interface {
	Book(ctx context.Context, in appointments.BookInput) (appointments.BookResult, error)
	Cancel(ctx context.Context, appointmentID uuid.UUID) (appointments.CancelResult, error)
	Update(ctx context.Context, in appointments.UpdateInput) (appointments.UpdateResult, error)
}

type Options struct {
	Secret         string
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

type Server struct {
	accounts     accountsService
	appointments appointmentsService
	secret       string
	limiter      *RateLimiter
	corsOrigins  []string
	log          *slog.Logger
}

func NewServer(accountsSvc accountsService, appointmentsSvc appointmentsService, opts Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		accounts:     accountsSvc,
		appointments: appointmentsSvc,
		secret:       opts.Secret,
		limiter:      NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		corsOrigins:  opts.CORSOrigins,
		log:          log.With(slog.String("component", "http")),
	}
}

// Handler wires the routes: register/login are open but rate limited, the
// rest sit behind the bearer-token middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /users/register", s.limiter.Limit(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /users/login", s.limiter.Limit(http.HandlerFunc(s.handleLogin)))

	mux.Handle("GET /users/profile", s.requireAuth(http.HandlerFunc(s.handleGetProfile)))
	mux.Handle("PUT /users/profile/update", s.requireAuth(http.HandlerFunc(s.handleUpdateProfile)))

	mux.Handle("POST /appointments/book", s.requireAuth(http.HandlerFunc(s.handleBook)))
	mux.Handle("PATCH /appointments/cancel/{appointmentId}", s.requireAuth(http.HandlerFunc(s.handleCancel)))
	mux.Handle("PUT /appointments/update/{appointmentId}", s.requireAuth(http.HandlerFunc(s.handleUpdate)))

	// Browsers reject credentialed responses carrying a wildcard origin, so
	// credentials are only allowed with an explicit origin list.
	allowCredentials := len(s.corsOrigins) > 0
	for _, o := range s.corsOrigins {
		if o == "*" {
			allowCredentials = false
			break
		}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: allowCredentials,
	})
	return c.Handler(mux)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorEnvelope{Error: msg})
}

// writeServiceError translates service failures into the transport envelope.
// Soft failures never reach here; they ride inside normal response bodies.
func (s *Server) writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	var acctErr *accounts.ValidationError
	var apptErr *appointments.ValidationError

	switch {
	case errors.As(err, &acctErr), errors.As(err, &apptErr):
		log.Warn("invalid request", slog.String("reason", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, accounts.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, appointments.ErrNoAvailability):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		log.Error("request failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be a valid uuid")
		return uuid.Nil, false
	}
	return id, true
}
