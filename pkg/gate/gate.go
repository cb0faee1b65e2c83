package gate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// State is the gate's view of the user's entitlement.
type State int

const (
	StateUnknown State = iota
	StateChecking
	StateEntitled
	StateNotEntitled
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateEntitled:
		return "entitled"
	case StateNotEntitled:
		return "not entitled"
	default:
		return "unknown"
	}
}

// ErrDismissed is returned by UI implementations when the user closes
// a prompt or dialog. The gate treats it as a cancellation: the
// command stays blocked and no state changes.
var ErrDismissed = errors.New("dismissed")

// UI is the presentation surface the gate drives. Implementations own
// all rendering; the gate owns the flow.
type UI interface {
	// Choose presents options and returns the selected one.
	Choose(ctx context.Context, prompt string, options []string) (string, error)
	// Prompt asks for a line of input, masked for secrets.
	Prompt(ctx context.Context, prompt string, masked bool) (string, error)
	// Notify shows a non-blocking message.
	Notify(message string)
	// OpenURL opens the address in an external browser.
	OpenURL(url string) error
}

// Choice and sub-choice labels presented by the sign-in flow.
const (
	choiceSignIn     = "Sign In"
	choiceSeePlans   = "See Plans"
	choiceCancel     = "Cancel"
	choiceSubscriber = "Subscriber"
	choiceOwner      = "Owner"
)

// startupCheckDelay defers the once-per-process startup check so it
// never competes with activation.
const startupCheckDelay = 3 * time.Second

// Gate guards privileged commands behind the entitlement check.
type Gate struct {
	client *Client
	cache  *CredentialCache
	ui     UI
	logger *slog.Logger

	mu    sync.Mutex
	state State

	startupOnce sync.Once
}

// New creates a Gate. The initial state comes from the credential
// cache so the fast path works from the first call.
func New(client *Client, cache *CredentialCache, ui UI, logger *slog.Logger) *Gate {
	g := &Gate{
		client: client,
		cache:  cache,
		ui:     ui,
		logger: logger,
		state:  StateUnknown,
	}
	if cache.Load().Entitled {
		g.state = StateEntitled
	}
	return g
}

// State returns the gate's current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) setState(s State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}

// Allow reports whether a privileged command may run. The cached
// Entitled state passes with no network call; otherwise the sign-in
// flow runs and the command proceeds only if it ends entitled.
func (g *Gate) Allow(ctx context.Context) bool {
	if g.State() == StateEntitled || g.cache.Load().Entitled {
		g.setState(StateEntitled)
		return true
	}
	return g.signInFlow(ctx)
}

// StartupCheck runs the entitlement prompt once per process lifetime,
// after a short delay, without blocking the caller.
func (g *Gate) StartupCheck(ctx context.Context) {
	g.startupOnce.Do(func() {
		go func() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(startupCheckDelay):
			}
			if g.State() == StateEntitled || g.cache.Load().Entitled {
				g.setState(StateEntitled)
				return
			}
			g.signInFlow(ctx)
		}()
	})
}

// signInFlow drives the {Sign In, See Plans, Cancel} loop. Dismissals
// and cancellations leave the prior state untouched.
func (g *Gate) signInFlow(ctx context.Context) bool {
	prior := g.State()
	g.setState(StateChecking)

	for {
		choice, err := g.ui.Choose(ctx, "This command requires a subscription.",
			[]string{choiceSignIn, choiceSeePlans, choiceCancel})
		if err != nil || choice == choiceCancel {
			g.setState(prior)
			return false
		}

		switch choice {
		case choiceSeePlans:
			if err := g.ui.OpenURL(g.client.PlansURL()); err != nil {
				g.ui.Notify("Could not open the plans page.")
			}
			// State unchanged; offer the choice again.
		case choiceSignIn:
			switch g.signIn(ctx) {
			case signInEntitled:
				g.setState(StateEntitled)
				return true
			case signInCanceled:
				g.setState(prior)
				return false
			case signInRejected:
				g.setState(StateNotEntitled)
				// Back to the top so "See Plans" stays reachable.
			}
		}
	}
}

type signInOutcome int

const (
	signInCanceled signInOutcome = iota
	signInRejected
	signInEntitled
)

// signIn runs the {Subscriber, Owner} sub-flow.
func (g *Gate) signIn(ctx context.Context) signInOutcome {
	kind, err := g.ui.Choose(ctx, "Sign in as", []string{choiceSubscriber, choiceOwner})
	if err != nil {
		return signInCanceled
	}

	switch kind {
	case choiceSubscriber:
		return g.subscriberSignIn(ctx)
	case choiceOwner:
		return g.ownerSignIn(ctx)
	default:
		return signInCanceled
	}
}

func (g *Gate) subscriberSignIn(ctx context.Context) signInOutcome {
	email, err := g.ui.Prompt(ctx, "Subscription email", false)
	if err != nil || email == "" {
		return signInCanceled
	}

	entitled, err := g.client.Entitlement(ctx, email)
	if err != nil {
		g.notifyFailure(err)
		return signInCanceled
	}
	if !entitled {
		g.ui.Notify("No active subscription found for " + email + ".")
		return signInRejected
	}

	if err := g.cache.Save(Credentials{Entitled: true, Email: email}); err != nil {
		g.logger.Warn("could not persist credentials", slog.String("error", err.Error()))
	}
	return signInEntitled
}

func (g *Gate) ownerSignIn(ctx context.Context) signInOutcome {
	code, err := g.ui.Prompt(ctx, "Owner access code", true)
	if err != nil || code == "" {
		return signInCanceled
	}

	result, err := g.client.OwnerLogin(ctx, code)
	if err != nil {
		g.notifyFailure(err)
		return signInCanceled
	}
	if !result.Access {
		g.ui.Notify("Invalid access code.")
		return signInRejected
	}

	if err := g.cache.Save(Credentials{Entitled: true, OwnerToken: result.Token}); err != nil {
		g.logger.Warn("could not persist credentials", slog.String("error", err.Error()))
	}
	return signInEntitled
}

// notifyFailure reports a failed verification call as a recoverable
// user-visible message.
func (g *Gate) notifyFailure(err error) {
	if errors.Is(err, ErrNetwork) {
		g.ui.Notify("Could not reach the licensing service. Please try again.")
	} else {
		g.ui.Notify("Sign-in failed. Please try again.")
	}
	g.logger.Warn("entitlement verification failed", slog.String("error", err.Error()))
}
