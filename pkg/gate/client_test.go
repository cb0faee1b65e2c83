package gate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientEntitlement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/entitlement" {
			t.Errorf("path = %q, want /entitlement", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("email") == "payer@example.com" {
			_, _ = w.Write([]byte(`{"entitled":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"entitled":false}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	ctx := context.Background()

	entitled, err := c.Entitlement(ctx, "payer@example.com")
	if err != nil {
		t.Fatalf("Entitlement() error = %v", err)
	}
	if !entitled {
		t.Error("entitled = false, want true")
	}

	entitled, err = c.Entitlement(ctx, "stranger@example.com")
	if err != nil {
		t.Fatalf("Entitlement() error = %v", err)
	}
	if entitled {
		t.Error("entitled = true, want false")
	}
}

func TestClientOwnerLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var req struct {
			Code string `json:"code"`
		}
		if err := readJSON(r, &req); err != nil || req.Code != "owner-super-secret-access-code" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid access code"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access":true,"token":"ot_cafe"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	ctx := context.Background()

	result, err := c.OwnerLogin(ctx, "owner-super-secret-access-code")
	if err != nil {
		t.Fatalf("OwnerLogin() error = %v", err)
	}
	if !result.Access || result.Token != "ot_cafe" {
		t.Errorf("result = %+v, want access with token", result)
	}

	// A wrong code is a clean negative, not an error.
	result, err = c.OwnerLogin(ctx, "owner-wrong-access-code")
	if err != nil {
		t.Fatalf("OwnerLogin() error = %v", err)
	}
	if result.Access {
		t.Error("access = true for a wrong code")
	}
}

func TestClientNetworkErrors(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	ctx := context.Background()

	if _, err := c.Entitlement(ctx, "payer@example.com"); !errors.Is(err, ErrNetwork) {
		t.Errorf("Entitlement() error = %v, want ErrNetwork", err)
	}
	if _, err := c.OwnerLogin(ctx, "code"); !errors.Is(err, ErrNetwork) {
		t.Errorf("OwnerLogin() error = %v, want ErrNetwork", err)
	}
	if _, err := c.CreateCheckoutSession(ctx, "gold8"); !errors.Is(err, ErrNetwork) {
		t.Errorf("CreateCheckoutSession() error = %v, want ErrNetwork", err)
	}
}

func TestClientVerifySession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("session_id") == "cs_test_paid" {
			_, _ = w.Write([]byte(`{"ok":true,"email":"payer@example.com"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":false}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)

	result, err := c.VerifySession(context.Background(), "cs_test_paid")
	if err != nil {
		t.Fatalf("VerifySession() error = %v", err)
	}
	if !result.OK || result.Email != "payer@example.com" {
		t.Errorf("result = %+v, want ok with email", result)
	}
}

func TestClientPlansURL(t *testing.T) {
	c := NewClient("http://localhost:4242/", 0)
	if got := c.PlansURL(); got != "http://localhost:4242/" {
		t.Errorf("PlansURL() = %q", got)
	}
}

func readJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}
