package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateCheckoutSession(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid tier",
			body:       `{"tierKey":"gold8"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown tier",
			body:       `{"tierKey":"wood8"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNKNOWN_TIER",
		},
		{
			name:       "missing tier",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_TIER",
		},
		{
			name:       "invalid json",
			body:       `{tier`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCheckoutHandler(newCheckoutManager(newStubBackend()), testLogger())

			req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Create(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				var resp CreateCheckoutSessionResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decoding response: %v", err)
				}
				if !strings.HasPrefix(resp.URL, "https://checkout.example.com/") {
					t.Errorf("url = %q, want hosted checkout url", resp.URL)
				}
				return
			}

			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestCreateCheckoutSessionPaymentsUnconfigured(t *testing.T) {
	h := NewCheckoutHandler(newCheckoutManager(nil), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(`{"tierKey":"gold8"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "PAYMENTS_UNCONFIGURED") {
		t.Errorf("body = %s, want PAYMENTS_UNCONFIGURED", rec.Body.String())
	}
}

func TestCreateCheckoutSessionBackendFailure(t *testing.T) {
	backend := newStubBackend()
	backend.fail = true
	h := NewCheckoutHandler(newCheckoutManager(backend), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(`{"tierKey":"gold8"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "CHECKOUT_FAILED") {
		t.Errorf("body = %s, want CHECKOUT_FAILED", rec.Body.String())
	}
}
