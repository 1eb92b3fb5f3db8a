// web/api.go
package web

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/eventdesk/campus"
	"github.com/dalemusser/eventdesk/export"
	"github.com/dalemusser/eventdesk/forms"
	"github.com/dalemusser/eventdesk/httputil"
	"go.uber.org/zap"
)

// registrationCheck is the body of /api/validate/registration. Without
// Confirm only the field checks run; with it the answer is fed to the
// confirmation step.
type registrationCheck struct {
	forms.Registration
	Confirm *bool `json:"confirm,omitempty"`
}

func (h *Handler) validateRegistration(w http.ResponseWriter, r *http.Request) {
	var in registrationCheck
	if err := httputil.BindJSON(r, &in); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	v := h.svc.Forms()
	if in.Confirm == nil {
		httputil.WriteJSON(w, http.StatusOK, v.CheckRegistration(in.Registration))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, v.ValidateRegistration(r.Context(), in.Registration, forms.Answer(*in.Confirm)))
}

func (h *Handler) validateEvent(w http.ResponseWriter, r *http.Request) {
	var in forms.Event
	if err := httputil.BindJSON(r, &in); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.svc.Forms().ValidateEvent(in))
}

type studentRequest struct {
	forms.Registration
	campus.Account
	Confirm bool `json:"confirm"`
}

func (h *Handler) createStudent(w http.ResponseWriter, r *http.Request) {
	var in studentRequest
	if err := httputil.BindJSON(r, &in); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	st, err := h.svc.RegisterStudent(r.Context(), in.Registration, in.Account, forms.Answer(in.Confirm))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, st)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) apiLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := httputil.BindJSON(r, &in); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	sess, err := h.svc.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.setSession(w, sess)
	httputil.WriteJSON(w, http.StatusOK, sess)
}

func (h *Handler) apiLogout(w http.ResponseWriter, _ *http.Request) {
	h.clearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// listEvents serves one page of events, or with ?upcoming=true every event
// from today on.
func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if up, _ := strconv.ParseBool(q.Get("upcoming")); up {
		events, err := h.svc.UpcomingEvents(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	p, err := h.svc.ListEvents(r.Context(), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

type eventRequest struct {
	forms.Event
	campus.EventExtras
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var in eventRequest
	if err := httputil.BindJSON(r, &in); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	ev, err := h.svc.CreateEvent(r.Context(), actor(r), in.Event, in.EventExtras)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ev)
}

func (h *Handler) setEventStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", "invalid event id")
		return
	}
	var in struct {
		Status string `json:"status"`
	}
	if err := httputil.BindJSON(r, &in); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := h.svc.SetEventStatus(r.Context(), actor(r), id, in.Status); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", "invalid event id")
		return
	}
	if err := h.svc.DeleteEvent(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listFaculty(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Faculty(r.Context(), actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"faculty": list})
}

func (h *Handler) createFaculty(w http.ResponseWriter, r *http.Request) {
	var in campus.FacultyInput
	if err := httputil.BindJSON(r, &in); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	f, err := h.svc.CreateFaculty(r.Context(), actor(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, f)
}

func (h *Handler) registerForEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", "invalid event id")
		return
	}
	reg, err := h.svc.RegisterForEvent(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, reg)
}

func (h *Handler) myRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.MyRegistrations(r.Context(), actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"registrations": regs})
}

func (h *Handler) cancelRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", "invalid registration id")
		return
	}
	if err := h.svc.CancelRegistration(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markAttendance(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token string `json:"token"`
	}
	if err := httputil.BindJSON(r, &in); err != nil {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	mark, err := h.svc.MarkAttendance(r.Context(), actor(r), in.Token)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, mark)
}

func (h *Handler) attendance(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", "invalid event id")
		return
	}
	ev, people, err := h.svc.Attendance(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"event": ev, "attendees": people})
}

func (h *Handler) attendanceSheet(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httputil.JSONError(w, http.StatusBadRequest, "bad_request", "invalid event id")
		return
	}
	ev, people, err := h.svc.Attendance(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := export.AttendanceBytes(people)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("attendance exported", zap.Int64("event_id", ev.ID), zap.Int("rows", len(people)))

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(ev.Name)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) notifications(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.Notifications(r.Context(), actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"notifications": notes})
}
