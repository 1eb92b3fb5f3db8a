// web/pages.go
package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dalemusser/eventdesk/auth"
	"github.com/dalemusser/eventdesk/campus"
	"github.com/dalemusser/eventdesk/forms"
	"github.com/dalemusser/eventdesk/store"
	"go.uber.org/zap"
)

// view is the data every page template receives.
type view struct {
	User     *auth.Claims
	Error    string
	Notice   string
	Prompt   string
	Form     url.Values
	Fields   map[string]string
	Page     campus.EventPage
	Upcoming []campus.EventView
	Faculty  []store.Faculty
	LeadDays int
}

func (h *Handler) newView(r *http.Request) view {
	c, _ := auth.FromContext(r.Context())
	return view{User: c, Form: url.Values{}, Prompt: forms.PromptSubmitRegistration, LeadDays: h.svc.LeadDays()}
}

// showError renders the message page for err with its mapped status.
func (h *Handler) showError(w http.ResponseWriter, r *http.Request, err error) {
	code, _ := status(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("page failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	v := h.newView(r)
	v.Error = campus.Message(err, h.svc.LeadDays())
	h.views.Render(w, code, "message", v)
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.UpcomingEvents(r.Context())
	if err != nil {
		h.showError(w, r, err)
		return
	}
	v := h.newView(r)
	v.Upcoming = events
	h.views.Render(w, http.StatusOK, "home", v)
}

func (h *Handler) eventList(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	p, err := h.svc.ListEvents(r.Context(), page)
	if err != nil {
		h.showError(w, r, err)
		return
	}
	v := h.newView(r)
	v.Page = p
	h.views.Render(w, http.StatusOK, "events", v)
}

func (h *Handler) registerForm(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, "register", h.newView(r))
}

// registerSubmit handles both steps of student sign-up. A browser with
// scripts asks the confirmation question itself and posts confirm=yes.
// Otherwise the first post only validates and answers with a page that
// asks the question; that page posts back with confirm set.
func (h *Handler) registerSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.showError(w, r, &campus.ValidationError{Form: "registration", Message: "The form could not be read."})
		return
	}
	reg := forms.RegistrationFrom(r.PostForm)
	acct := campus.Account{
		Password: r.PostForm.Get("password"),
		Confirm:  r.PostForm.Get("confirm_password"),
		Semester: r.PostForm.Get("semester"),
	}

	v := h.newView(r)
	v.Form = r.PostForm
	// Passwords are never rendered back into a page.
	v.Form.Del("password")
	v.Form.Del("confirm_password")

	if r.PostForm.Get("confirm") == "no" {
		v.Error = campus.Message(campus.ErrNotConfirmed, h.svc.LeadDays())
		h.views.Render(w, http.StatusUnprocessableEntity, "register", v)
		return
	}

	var asked string
	confirmer := forms.ConfirmFunc(func(_ context.Context, prompt string) bool {
		asked = prompt
		return r.PostForm.Get("confirm") == "yes"
	})

	_, err := h.svc.RegisterStudent(r.Context(), reg, acct, confirmer)
	switch {
	case err == nil:
		v.Form = url.Values{}
		v.Notice = "Registration successful! Please login."
		h.views.Render(w, http.StatusCreated, "login", v)
	case errors.Is(err, campus.ErrNotConfirmed) && r.PostForm.Get("confirm") == "":
		v.Prompt = asked
		h.views.Render(w, http.StatusOK, "confirm", v)
	default:
		var verr *campus.ValidationError
		if errors.As(err, &verr) {
			v.Fields = verr.Fields
		}
		code, _ := status(err)
		if code == http.StatusInternalServerError {
			h.showError(w, r, err)
			return
		}
		v.Error = campus.Message(err, h.svc.LeadDays())
		h.views.Render(w, code, "register", v)
	}
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, "login", h.newView(r))
}

func (h *Handler) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.showError(w, r, campus.ErrInvalidCredentials)
		return
	}
	sess, err := h.svc.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		code, _ := status(err)
		if code == http.StatusInternalServerError {
			h.showError(w, r, err)
			return
		}
		v := h.newView(r)
		v.Form.Set("username", r.PostForm.Get("username"))
		v.Error = campus.Message(err, h.svc.LeadDays())
		h.views.Render(w, code, "login", v)
		return
	}
	h.setSession(w, sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// adminOnly sends anonymous visitors to the login page and shows the
// forbidden message to anyone else who is not an administrator.
func (h *Handler) adminOnly(w http.ResponseWriter, r *http.Request) bool {
	c, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return false
	}
	if c.Role != auth.RoleFaculty || !c.Admin {
		h.showError(w, r, campus.ErrForbidden)
		return false
	}
	return true
}

func (h *Handler) eventForm(w http.ResponseWriter, r *http.Request) {
	if !h.adminOnly(w, r) {
		return
	}
	v, err := h.eventView(r)
	if err != nil {
		h.showError(w, r, err)
		return
	}
	h.views.Render(w, http.StatusOK, "event_new", v)
}

func (h *Handler) eventView(r *http.Request) (view, error) {
	v := h.newView(r)
	list, err := h.svc.Faculty(r.Context(), actor(r))
	if err != nil {
		return v, err
	}
	v.Faculty = list
	return v, nil
}

func (h *Handler) eventSubmit(w http.ResponseWriter, r *http.Request) {
	if !h.adminOnly(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.showError(w, r, &campus.ValidationError{Form: "event", Message: "The form could not be read."})
		return
	}
	coord, _ := strconv.ParseInt(r.PostForm.Get("coordinator_id"), 10, 64)
	ev := forms.EventFrom(r.PostForm)
	extras := campus.EventExtras{Description: r.PostForm.Get("description"), CoordinatorID: coord}

	v, err := h.eventView(r)
	if err != nil {
		h.showError(w, r, err)
		return
	}
	v.Form = r.PostForm

	created, err := h.svc.CreateEvent(r.Context(), actor(r), ev, extras)
	if err != nil {
		code, _ := status(err)
		if code == http.StatusInternalServerError {
			h.showError(w, r, err)
			return
		}
		var verr *campus.ValidationError
		if errors.As(err, &verr) {
			v.Fields = verr.Fields
		}
		v.Error = campus.Message(err, h.svc.LeadDays())
		h.views.Render(w, code, "event_new", v)
		return
	}
	v.Form = url.Values{}
	v.Notice = "Event created: " + created.Name + "."
	h.views.Render(w, http.StatusCreated, "event_new", v)
}
