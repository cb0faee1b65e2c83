package handler

import (
	"crypto/rand"
	"encoding/base64"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/agent8/licensing/internal/model"
)

// PageHandler serves the hosted plans, success and cancel pages.
type PageHandler struct {
	productName string
	logger      *slog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(productName string, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		productName: productName,
		logger:      logger,
	}
}

type tierView struct {
	Key   string
	Name  string
	Price string
}

type pageData struct {
	Nonce   string
	Product string
	Tiers   []tierView
}

// Plans handles GET /, listing the subscription tiers.
func (h *PageHandler) Plans(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Nonce:   h.newNonce(),
		Product: h.productName,
	}
	for _, t := range model.ListTiers() {
		data.Tiers = append(data.Tiers, tierView{
			Key:   t.Key,
			Name:  t.DisplayName,
			Price: t.PriceString(),
		})
	}
	h.render(w, plansTemplate, data)
}

// Success handles GET /success.html. The page verifies the session
// client-side so the redirect from the payment provider needs no
// server-side state.
func (h *PageHandler) Success(w http.ResponseWriter, r *http.Request) {
	h.render(w, successTemplate, pageData{Nonce: h.newNonce(), Product: h.productName})
}

// Cancel handles GET /cancel.html.
func (h *PageHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.render(w, cancelTemplate, pageData{Nonce: h.newNonce(), Product: h.productName})
}

func (h *PageHandler) render(w http.ResponseWriter, tmpl *template.Template, data pageData) {
	// Inline style and script blocks are nonce-gated; override the
	// API-wide policy for this response only.
	w.Header().Set("Content-Security-Policy",
		"default-src 'self'; style-src 'nonce-"+data.Nonce+"'; script-src 'nonce-"+data.Nonce+"'; frame-ancestors 'none'")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		h.logger.Error("page_render_failed", "template", tmpl.Name(), "error", err)
	}
}

func (h *PageHandler) newNonce() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(b)
}

var plansTemplate = template.Must(template.New("plans").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Product}} Plans</title>
  <style nonce="{{.Nonce}}">
    body { font-family: system-ui, sans-serif; background: #f6f7f9; margin: 0; padding: 2rem; }
    h1 { text-align: center; }
    .plans { display: flex; flex-wrap: wrap; gap: 1rem; justify-content: center; max-width: 64rem; margin: 2rem auto; }
    .plan { background: #fff; border: 1px solid #e1e4e8; border-radius: 8px; padding: 1.5rem; width: 11rem; text-align: center; }
    .plan h2 { margin: 0 0 .5rem; font-size: 1.1rem; }
    .price { font-size: 1.3rem; margin-bottom: 1rem; }
    button { background: #4355f9; color: #fff; border: 0; border-radius: 6px; padding: .6rem 1.2rem; cursor: pointer; }
    button:disabled { opacity: .5; }
    .error { color: #b00020; text-align: center; }
  </style>
</head>
<body>
  <h1>{{.Product}} Plans</h1>
  <div class="plans">
    {{range .Tiers}}
    <div class="plan">
      <h2>{{.Name}}</h2>
      <div class="price">{{.Price}}</div>
      <button data-tier="{{.Key}}">Subscribe</button>
    </div>
    {{end}}
  </div>
  <p class="error" id="error" hidden>Could not start checkout. Please try again.</p>
  <script nonce="{{.Nonce}}">
    document.querySelectorAll('button[data-tier]').forEach(function (btn) {
      btn.addEventListener('click', async function () {
        btn.disabled = true;
        try {
          const resp = await fetch('/create-checkout-session', {
            method: 'POST',
            headers: { 'Content-Type': 'application/json' },
            body: JSON.stringify({ tierKey: btn.dataset.tier })
          });
          const body = await resp.json();
          if (resp.ok && body.url) {
            window.location = body.url;
            return;
          }
        } catch (e) {}
        document.getElementById('error').hidden = false;
        btn.disabled = false;
      });
    });
  </script>
</body>
</html>
`))

var successTemplate = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Payment Complete</title>
  <style nonce="{{.Nonce}}">
    body { font-family: system-ui, sans-serif; background: #f6f7f9; text-align: center; padding: 4rem 2rem; }
    .card { background: #fff; border: 1px solid #e1e4e8; border-radius: 8px; max-width: 28rem; margin: 0 auto; padding: 2rem; }
  </style>
</head>
<body>
  <div class="card">
    <h1 id="title">Confirming your payment&hellip;</h1>
    <p id="message">One moment while we activate your subscription.</p>
  </div>
  <script nonce="{{.Nonce}}">
    (async function () {
      const title = document.getElementById('title');
      const message = document.getElementById('message');
      const sessionId = new URLSearchParams(window.location.search).get('session_id');
      if (!sessionId) {
        title.textContent = 'Missing session';
        message.textContent = 'No checkout session was provided.';
        return;
      }
      try {
        const resp = await fetch('/verify-session?session_id=' + encodeURIComponent(sessionId));
        const body = await resp.json();
        if (resp.ok && body.ok) {
          title.textContent = 'You are all set!';
          message.textContent = 'Your subscription is active. You can close this window and return to the app.';
          return;
        }
        if (resp.ok) {
          title.textContent = 'Payment pending';
          message.textContent = 'Your payment has not completed yet. Refresh this page once it has.';
          return;
        }
      } catch (e) {}
      title.textContent = 'Verification failed';
      message.textContent = 'We could not confirm your payment. Please contact support.';
    })();
  </script>
</body>
</html>
`))

var cancelTemplate = template.Must(template.New("cancel").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Checkout Canceled</title>
  <style nonce="{{.Nonce}}">
    body { font-family: system-ui, sans-serif; background: #f6f7f9; text-align: center; padding: 4rem 2rem; }
    .card { background: #fff; border: 1px solid #e1e4e8; border-radius: 8px; max-width: 28rem; margin: 0 auto; padding: 2rem; }
    a { color: #4355f9; }
  </style>
</head>
<body>
  <div class="card">
    <h1>Checkout canceled</h1>
    <p>No charge was made. <a href="/">Back to plans</a>.</p>
  </div>
</body>
</html>
`))
