package scraper

import (
	"context"
	"sync"
	"time"

	"jmichaud/grocerytracker/config"
	"jmichaud/grocerytracker/logger"
	"jmichaud/grocerytracker/pkg/errors"
)

// SessionState tracks where the session controller is in its lifecycle.
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateLaunching
	StateReady
	StateAuthenticating
	StateAuthenticated
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLaunching:
		return "launching"
	case StateReady:
		return "ready"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// loginPollInterval is how often the post-login marker check re-runs inside
// its bounded window.
const loginPollInterval = 250 * time.Millisecond

// Session owns the headless-browser process and the primary page. Teardown is
// idempotent and must run on every exit path; the run orchestrator defers it.
type Session struct {
	cfg        config.Config
	newBrowser BrowserFactory
	log        *logger.Logger

	browser Browser
	page    Page
	state   SessionState

	closeMu sync.Mutex
	closed  bool
}

// NewSession creates a session controller. The browser is not launched until
// Start.
func NewSession(cfg config.Config, factory BrowserFactory) *Session {
	if factory == nil {
		factory = NewChromeBrowser
	}
	return &Session{
		cfg:        cfg,
		newBrowser: factory,
		log:        logger.ForSession(),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return s.state
}

// Page returns the primary page. Valid only after Start.
func (s *Session) Page() Page {
	return s.page
}

// Start launches the browser and opens the primary page. It fails with a
// cancellation error if the context is already done.
func (s *Session) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.NewCancelled("session.start", err)
	}

	s.state = StateLaunching
	s.log.Debug().Msg("Launching browser")

	browser, err := s.newBrowser(ctx, s.cfg.Headless)
	if err != nil {
		return errors.NewScrape("session.start", "browser launch failed", err)
	}
	s.browser = browser

	page, err := browser.NewPage(ctx)
	if err != nil {
		return errors.NewScrape("session.start", "primary page open failed", err)
	}
	s.page = page

	s.state = StateReady
	return nil
}

// Login authenticates the primary page: navigate to the login surface, wait
// for the credential form, submit through the site's client-side hook, then
// poll for any known logged-in marker. Selector and timeout failures surface
// as typed errors; nothing here retries.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	if err := ctx.Err(); err != nil {
		return errors.NewCancelled("session.login", err)
	}

	s.state = StateAuthenticating
	sel := s.cfg.Selectors

	if err := s.page.Navigate(ctx, s.cfg.LoginURL, s.cfg.NavigationTimeout); err != nil {
		return errors.NewNavigationTimeout("session.login", err)
	}
	if err := s.page.WaitVisible(ctx, sel.UsernameField, s.cfg.LoginFormTimeout); err != nil {
		return errors.NewFormNotFound("session.login", err)
	}

	if err := s.page.SendKeys(ctx, sel.UsernameField, creds.Username, s.cfg.LoginFormTimeout); err != nil {
		return errors.NewScrape("session.login", "typing username failed", err)
	}
	if err := s.page.SendKeys(ctx, sel.PasswordField, creds.Password, s.cfg.LoginFormTimeout); err != nil {
		return errors.NewScrape("session.login", "typing password failed", err)
	}
	if err := s.page.Evaluate(ctx, sel.SubmitScript, s.cfg.NavigationTimeout); err != nil {
		return errors.NewScrape("session.login", "submit hook failed", err)
	}

	// Let the post-submit navigation and client-side scripts settle before
	// probing for markers.
	select {
	case <-time.After(s.cfg.SettleDelay):
	case <-ctx.Done():
		return errors.NewCancelled("session.login", ctx.Err())
	}

	deadline := time.Now().Add(s.cfg.LoginDoneTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return errors.NewCancelled("session.login", err)
		}
		for _, marker := range sel.LoggedInMarker {
			n, err := s.page.Count(ctx, marker, s.cfg.LoginDoneTimeout)
			if err != nil {
				continue
			}
			if n > 0 {
				s.state = StateAuthenticated
				s.log.Info().Str("marker", marker).Msg("Login verified")
				return nil
			}
		}
		if time.Now().After(deadline) {
			return errors.NewLoginFailed("session.login", "no logged-in marker appeared", nil)
		}
		select {
		case <-time.After(loginPollInterval):
		case <-ctx.Done():
			return errors.NewCancelled("session.login", ctx.Err())
		}
	}
}

// Close tears down the page then the browser. Idempotent; secondary errors
// during teardown are logged and swallowed so they never mask the primary
// result of the run.
func (s *Session) Close() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	if s.page != nil {
		if err := s.page.Close(); err != nil {
			s.log.Warn().Err(err).Msg("Closing primary page failed")
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.log.Warn().Err(err).Msg("Closing browser failed")
		}
	}
	s.state = StateClosed
	s.log.Debug().Msg("Session closed")
}
