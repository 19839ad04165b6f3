package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTimeout_SlowHandler(t *testing.T) {
	done := make(chan struct{})
	var lateN int
	var lateErr error

	h := Timeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		// Well past the deadline, so the timeout response is already out.
		time.Sleep(100 * time.Millisecond)
		lateN, lateErr = w.Write([]byte("late body"))
		close(done)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	<-done

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if body := rec.Body.String(); strings.Contains(body, "late body") {
		t.Errorf("handler bytes leaked into the timeout response: %q", body)
	}
	if !strings.Contains(rec.Body.String(), "timeout") {
		t.Errorf("body = %q, want the timeout error envelope", rec.Body.String())
	}
	if lateN != 0 || !errors.Is(lateErr, http.ErrHandlerTimeout) {
		t.Errorf("late Write = (%d, %v), want (0, ErrHandlerTimeout)", lateN, lateErr)
	}
}

func TestTimeout_FastHandler(t *testing.T) {
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("done"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
	if rec.Body.String() != "done" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "done")
	}
}

func TestTimeout_SlowWriteHeaderSuppressed(t *testing.T) {
	done := make(chan struct{})

	h := Timeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		close(done)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	<-done

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}
