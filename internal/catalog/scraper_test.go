package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/msto63/kurswerk/internal/prereq"
	kwerror "github.com/msto63/kurswerk/pkg/core/error"
	"github.com/msto63/kurswerk/pkg/core/logging"
)

const catalogPage = `<!DOCTYPE html>
<html><body>
<div class="credits"><h3>Credits</h3>99</div>
<h2 class="course-name"><span>CSE 12</span> Computer Systems and Assembly Language</h2>
<div class="credits"><h3>Credits</h3>7</div>
<div class="extraFields"><h4>Requirements</h4><p>Prerequisite(s): CSE 5J or CSE 20.</p></div>
<h2 class="course-name"><span>CSE 20</span> Beginning Programming in Python</h2>
<div class="credits"><h3>Credits</h3>5</div>
<div class="extraFields"><h4>General Education Code</h4><p>MF</p></div>
<h2 class="course-name">CSE 101   Introduction to
  Data Structures</h2>
<div class="extraFields"><h4>Requirements</h4><p>Prerequisite(s): CSE 12; and CSE 13S.</p></div>
<div class="extraFields"><h4>Requirements</h4><p>Prerequisite(s): ignored second block.</p></div>
</body></html>`

func newTestScraper() *Scraper {
	return NewScraper(DefaultConfig()).WithLogger(logging.Discard())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, expected 30s", cfg.Timeout)
	}
	if !strings.HasPrefix(cfg.UserAgent, "kurswerk/") {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
}

func TestNewScraper(t *testing.T) {
	s := NewScraper(Config{Timeout: 5 * time.Second})

	if s.httpClient == nil || s.httpClient.Timeout != 5*time.Second {
		t.Errorf("httpClient = %+v, want 5s timeout", s.httpClient)
	}
	if s.userAgent == "" {
		t.Error("userAgent should default")
	}
	if s.logger == nil {
		t.Error("logger should not be nil")
	}
}

func TestExtract(t *testing.T) {
	courses, err := Extract(strings.NewReader(catalogPage))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	expected := []Course{
		{Code: "CSE 12", Title: "Computer Systems and Assembly Language", Credits: 7, Requirements: "CSE 5J or CSE 20"},
		{Code: "CSE 20", Title: "Beginning Programming in Python", Credits: 5, Requirements: prereq.NoneMarker},
		{Code: "CSE 101", Title: "Introduction to Data Structures", Credits: 0, Requirements: "CSE 12; and CSE 13S"},
	}

	if len(courses) != len(expected) {
		t.Fatalf("Extract() returned %d courses, want %d: %+v", len(courses), len(expected), courses)
	}
	for i, want := range expected {
		if courses[i] != want {
			t.Errorf("course[%d] = %+v, want %+v", i, courses[i], want)
		}
	}
}

func TestExtract_Empty(t *testing.T) {
	courses, err := Extract(strings.NewReader("<html><body><p>maintenance</p></body></html>"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(courses) != 0 {
		t.Errorf("Extract() = %+v, want no courses", courses)
	}
}

func TestExtract_NestedLayout(t *testing.T) {
	page := `<html><body>
<div class="course"><h2 class="course-name"><span>CSE 30</span> Programming Abstractions</h2></div>
<div class="details"><div class="extraFields"><h4>Requirements</h4><p>Prerequisite(s): CSE 20.</p></div></div>
</body></html>`

	courses, err := Extract(strings.NewReader(page))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("Extract() returned %d courses, want 1", len(courses))
	}
	if courses[0].Requirements != "CSE 20" {
		t.Errorf("Requirements = %q, want CSE 20", courses[0].Requirements)
	}
}

func TestFetch(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(catalogPage))
	}))
	defer server.Close()

	courses, err := newTestScraper().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(courses) != 3 {
		t.Errorf("Fetch() returned %d courses, want 3", len(courses))
	}
	if !strings.HasPrefix(userAgent, "kurswerk/") {
		t.Errorf("User-Agent = %q", userAgent)
	}
}

func TestFetch_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		url  string
		code kwerror.Code
	}{
		{"server error", context.Background(), server.URL, kwerror.CodeExternalServiceError},
		{"cancelled", cancelled, server.URL, kwerror.CodeNetworkError},
		{"bad url", context.Background(), "://catalog", kwerror.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestScraper().Fetch(tt.ctx, tt.url)
			if err == nil {
				t.Fatal("Fetch() should fail")
			}
			if !kwerror.HasCode(err, tt.code) {
				t.Errorf("Fetch() code = %v, want %v", kwerror.GetCode(err), tt.code)
			}
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	s := NewScraper(Config{Timeout: 50 * time.Millisecond}).WithLogger(logging.Discard())
	_, err := s.Fetch(context.Background(), server.URL)
	if !kwerror.HasCode(err, kwerror.CodeNetworkError) {
		t.Errorf("Fetch() error = %v, want NETWORK_ERROR", err)
	}
}
