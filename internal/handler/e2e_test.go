package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/agent8/licensing/internal/auth"
	"github.com/agent8/licensing/internal/billing"
	"github.com/agent8/licensing/internal/middleware"
	"github.com/agent8/licensing/internal/store"
)

// TestSubscriptionFlow walks the full path a subscriber takes: create
// a checkout session for gold8, pay it, land on verification, then
// pass the entitlement check.
func TestSubscriptionFlow(t *testing.T) {
	backend := newStubBackend()
	st := store.NewMemoryStore()
	logger := testLogger()

	resolver := billing.NewCatalogResolver(backend, "Agent 8", logger)
	manager := billing.NewCheckoutManager(backend, resolver,
		"http://localhost:4242/success.html",
		"http://localhost:4242/cancel.html",
		nil, logger)
	verifier := billing.NewSessionVerifier(backend, st, nil, logger)
	authenticator := auth.NewOwnerAuthenticator("owner-super-secret-access-code", "")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer(logger))
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	pages := NewPageHandler("Agent 8", logger)
	r.Get("/", pages.Plans)
	r.Get("/success.html", pages.Success)
	r.Get("/cancel.html", pages.Cancel)
	r.Post("/create-checkout-session", NewCheckoutHandler(manager, logger).Create)
	r.Get("/verify-session", NewVerifyHandler(verifier, logger).Verify)
	r.Get("/entitlement", NewEntitlementHandler(st, nil, logger).Check)
	r.Post("/owner-login", NewOwnerHandler(authenticator, nil, logger).Login)

	srv := httptest.NewServer(r)
	defer srv.Close()

	// Before paying, the subscriber has no entitlement.
	var ent EntitlementResponse
	getJSON(t, srv.URL+"/entitlement?email=payer@example.com", http.StatusOK, &ent)
	if ent.Entitled {
		t.Fatal("entitled before any payment")
	}

	// Create the checkout session.
	var created CreateCheckoutSessionResponse
	postJSON(t, srv.URL+"/create-checkout-session", `{"tierKey":"gold8"}`, http.StatusOK, &created)
	if created.URL == "" {
		t.Fatal("no checkout url")
	}

	if len(backend.sessions) != 1 {
		t.Fatalf("backend has %d sessions, want 1", len(backend.sessions))
	}
	var sessionID string
	for id := range backend.sessions {
		sessionID = id
	}

	// Verification before payment is a clean negative.
	var verified VerifySessionResponse
	getJSON(t, srv.URL+"/verify-session?session_id="+sessionID, http.StatusOK, &verified)
	if verified.OK {
		t.Fatal("unpaid session verified")
	}

	// The subscriber pays on the hosted page.
	backend.pay(sessionID, "payer@example.com")

	getJSON(t, srv.URL+"/verify-session?session_id="+sessionID, http.StatusOK, &verified)
	if !verified.OK {
		t.Fatal("paid session did not verify")
	}
	if verified.Email != "payer@example.com" {
		t.Errorf("email = %q, want payer@example.com", verified.Email)
	}

	// The entitlement is now visible, regardless of email casing.
	getJSON(t, srv.URL+"/entitlement?email=Payer@Example.com", http.StatusOK, &ent)
	if !ent.Entitled {
		t.Fatal("payer not entitled after verification")
	}

	// The owner override works independently of any payment.
	var owner OwnerLoginResponse
	postJSON(t, srv.URL+"/owner-login", `{"code":"owner-super-secret-access-code"}`, http.StatusOK, &owner)
	if !owner.Access || owner.Token == "" {
		t.Error("owner login did not grant access")
	}
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("GET %s: decoding: %v", url, err)
	}
}

func postJSON(t *testing.T, url, body string, wantStatus int, out any) {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("POST %s: status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("POST %s: decoding: %v", url, err)
	}
}
