// web/web.go
package web

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/eventdesk/auth"
	"github.com/dalemusser/eventdesk/campus"
	"github.com/dalemusser/eventdesk/httputil"
	"github.com/dalemusser/eventdesk/middleware"
	"github.com/dalemusser/eventdesk/store"
	"github.com/dalemusser/eventdesk/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:embed ui
var uiFS embed.FS

// Handler serves the desk's pages and its JSON API.
type Handler struct {
	svc          *campus.Service
	tokens       *auth.Issuer
	views        *templates.Engine
	logger       *zap.Logger
	secureCookie bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithSecureCookie marks the session cookie Secure. Turn it on whenever the
// desk is served over TLS.
func WithSecureCookie(on bool) Option {
	return func(h *Handler) { h.secureCookie = on }
}

// New compiles the embedded pages and returns a Handler.
func New(svc *campus.Service, tokens *auth.Issuer, logger *zap.Logger, opts ...Option) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sub, err := fs.Sub(uiFS, "ui")
	if err != nil {
		return nil, err
	}
	views, err := templates.New(sub, logger)
	if err != nil {
		return nil, err
	}
	h := &Handler{svc: svc, tokens: tokens, views: views, logger: logger}
	for _, o := range opts {
		o(h)
	}
	return h, nil
}

// Mount attaches the pages at / and the API at /api.
func (h *Handler) Mount(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.tokens.Middleware)

		r.Get("/", h.home)
		r.Get("/events", h.eventList)
		r.Get("/register", h.registerForm)
		r.Post("/register", h.registerSubmit)
		r.Get("/login", h.loginForm)
		r.Post("/login", h.loginSubmit)
		r.Post("/logout", h.logout)
		r.Get("/events/new", h.eventForm)
		r.Post("/events/new", h.eventSubmit)

		r.Route("/api", h.api)
	})
}

func (h *Handler) api(r chi.Router) {
	r.Use(middleware.RequireJSON)

	r.Post("/validate/registration", h.validateRegistration)
	r.Post("/validate/event", h.validateEvent)
	r.Post("/students", h.createStudent)
	r.Post("/login", h.apiLogin)
	r.Post("/logout", h.apiLogout)
	r.Get("/events", h.listEvents)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Post("/events", h.createEvent)
		r.Patch("/events/{id}/status", h.setEventStatus)
		r.Delete("/events/{id}", h.deleteEvent)
		r.Get("/faculty", h.listFaculty)
		r.Post("/faculty", h.createFaculty)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleStudent))
		r.Post("/events/{id}/registrations", h.registerForEvent)
		r.Get("/registrations", h.myRegistrations)
		r.Delete("/registrations/{id}", h.cancelRegistration)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(auth.RoleFaculty))
		r.Post("/attendance", h.markAttendance)
		r.Get("/events/{id}/attendance", h.attendance)
		r.Get("/events/{id}/attendance.xlsx", h.attendanceSheet)
	})

	r.With(auth.RequireSignedIn).Get("/notifications", h.notifications)
}

// actor is the signed-in caller, or the zero Actor.
func actor(r *http.Request) campus.Actor {
	if c, ok := auth.FromContext(r.Context()); ok {
		return campus.ActorFrom(c)
	}
	return campus.Actor{}
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// status maps a campus error to its HTTP status and machine code.
func status(err error) (int, string) {
	var verr *campus.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, "validation_failed"
	case errors.Is(err, campus.ErrNotConfirmed):
		return http.StatusUnprocessableEntity, "not_confirmed"
	case errors.Is(err, campus.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, campus.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, campus.ErrRegistrationClosed):
		return http.StatusConflict, "registration_closed"
	case errors.Is(err, campus.ErrDeadlinePassed):
		return http.StatusConflict, "deadline_passed"
	case errors.Is(err, campus.ErrAlreadyRegistered):
		return http.StatusConflict, "already_registered"
	case errors.Is(err, campus.ErrCancelTooLate):
		return http.StatusConflict, "cancel_too_late"
	case errors.Is(err, campus.ErrAlreadyAttended):
		return http.StatusConflict, "already_attended"
	case errors.Is(err, campus.ErrStudentExists):
		return http.StatusConflict, "student_exists"
	case errors.Is(err, campus.ErrFacultyExists):
		return http.StatusConflict, "faculty_exists"
	}
	return http.StatusInternalServerError, "internal"
}

// fail writes err as a JSON error. Unexpected errors are logged and
// reported without detail.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, name := status(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	msg := campus.Message(err, h.svc.LeadDays())
	var verr *campus.ValidationError
	if errors.As(err, &verr) {
		httputil.JSONFieldErrors(w, msg, verr.Fields)
		return
	}
	httputil.JSONError(w, code, name, msg)
}

func (h *Handler) setSession(w http.ResponseWriter, s campus.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
