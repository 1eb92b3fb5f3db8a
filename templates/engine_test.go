package templates

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

var testFS = fstest.MapFS{
	"layout.html":     {Data: []byte(`{{define "layout"}}<title>{{template "title" .}}</title><main>{{template "content" .}}</main>{{end}}`)},
	"pages/home.html": {Data: []byte(`{{define "title"}}Home{{end}}{{define "content"}}hello {{.}}{{end}}`)},
	"pages/list.html": {Data: []byte(`{{define "title"}}List{{end}}{{define "content"}}{{dateLabel .}}{{end}}`)},
	"pages/bad.html":  {Data: []byte(`{{define "title"}}Bad{{end}}{{define "content"}}{{.Missing.Field}}{{end}}`)},
}

func TestEngine_RendersPagesIndependently(t *testing.T) {
	e, err := New(testFS, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := httptest.NewRecorder()
	e.Render(rec, http.StatusOK, "home", "world")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "<title>Home</title><main>hello world</main>" {
		t.Fatalf("body = %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content-type = %q", ct)
	}

	rec = httptest.NewRecorder()
	e.Render(rec, http.StatusCreated, "list", "2026-10-19")
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Mon, 19 Oct 2026") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestEngine_Failures(t *testing.T) {
	e, err := New(testFS, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if e.Has("nope") {
		t.Fatal("Has(nope) = true")
	}

	rec := httptest.NewRecorder()
	e.Render(rec, http.StatusOK, "nope", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unknown page code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	e.Render(rec, http.StatusOK, "bad", 42)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("bad page code = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<main>") {
		t.Fatal("partial page was written")
	}
}

func TestNew_NoPages(t *testing.T) {
	fsys := fstest.MapFS{"layout.html": {Data: []byte(`{{define "layout"}}{{end}}`)}}
	if _, err := New(fsys, nil); err == nil {
		t.Fatal("expected an error without pages")
	}
}

func TestDateLabel(t *testing.T) {
	if got := dateLabel("not a date"); got != "not a date" {
		t.Fatalf("got %q", got)
	}
}
