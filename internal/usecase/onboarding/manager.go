package onboarding

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"careerconnect/internal/domain/onboarding/form"
	"careerconnect/internal/domain/role"
	"careerconnect/internal/logging"
	"careerconnect/internal/pkg/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("onboarding session not found")
	ErrNoFormVariant   = errors.New("no onboarding form for role")
)

const (
	EventStarted     = "onboarding_started"
	EventStartFailed = "onboarding_start_failed"
	EventSubmitted   = "onboarding_submitted"
)

type Identity struct {
	UserID string
	Role   role.Role
}

// Notifier pushes events to a user's realtime stream.
type Notifier interface {
	Notify(userID, eventType string, data any)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string, any) {}

type View struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Role        role.Role     `json:"role"`
	Form        form.State    `json:"form"`
	Progress    TrackerStatus `json:"progress"`
	Destination string        `json:"destination,omitempty"`
}

type Session struct {
	id       string
	identity Identity

	mu       sync.Mutex
	creds    session.Credentials
	form     *form.Controller
	tracker  *Tracker
	lastSeen time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func (s *Session) view() View {
	v := View{
		ID:       s.id,
		UserID:   s.identity.UserID,
		Role:     s.identity.Role,
		Form:     s.form.State(),
		Progress: s.tracker.Status(),
	}
	if s.form.Submitted() {
		v.Destination = role.RouteFor(s.identity.Role)
	}
	return v
}

type Manager struct {
	gateway  Gateway
	notifier Notifier
	logger   *zap.Logger
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

func NewManager(gateway Gateway, notifier Notifier, ttl time.Duration, logger *zap.Logger) *Manager {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Manager{
		gateway:  gateway,
		notifier: notifier,
		logger:   logging.OrNop(logger),
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Open creates a session with a fresh form and kicks off the remote start
// call in the background.
func (m *Manager) Open(ctx context.Context, id Identity, creds *session.Credentials) (View, error) {
	schema, ok := form.SchemaFor(id.Role)
	if !ok {
		return View{}, fmt.Errorf("%w: %q", ErrNoFormVariant, id.Role)
	}

	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &Session{
		id:       uuid.NewString(),
		identity: id,
		form:     form.NewController(schema),
		tracker:  NewTracker(m.gateway, m.logger),
		lastSeen: m.now(),
		ctx:      sctx,
		cancel:   cancel,
	}
	if creds != nil {
		s.creds = *creds
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Info("onboarding session opened",
		zap.String("session_id", s.id), zap.String("user_id", id.UserID), zap.String("role", id.Role.String()))

	m.triggerStart(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// Get returns the session state and re-evaluates the start trigger with the
// caller's current credentials.
func (m *Manager) Get(ctx context.Context, userID, sessionID string, creds *session.Credentials) (View, error) {
	s, err := m.lookup(userID, sessionID)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	if creds.Present() {
		s.creds = *creds
	}
	s.mu.Unlock()

	m.triggerStart(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// SetFields applies values in name order and stops at the first rejected one.
func (m *Manager) SetFields(ctx context.Context, userID, sessionID string, values map[string]any) (View, error) {
	s, err := m.lookup(userID, sessionID)
	if err != nil {
		return View{}, err
	}

	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		if err := s.form.Set(name, values[name]); err != nil {
			return s.view(), fmt.Errorf("%s: %w", name, err)
		}
	}
	return s.view(), nil
}

func (m *Manager) Advance(ctx context.Context, userID, sessionID string) (View, error) {
	return m.step(userID, sessionID, (*form.Controller).Advance)
}

func (m *Manager) Retreat(ctx context.Context, userID, sessionID string) (View, error) {
	return m.step(userID, sessionID, (*form.Controller).Retreat)
}

func (m *Manager) step(userID, sessionID string, move func(*form.Controller) error) (View, error) {
	s, err := m.lookup(userID, sessionID)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = move(s.form)
	return s.view(), err
}

// Submit sends the answers upstream. creds is the caller's live credential
// set; a refresh during the call rotates it in place.
func (m *Manager) Submit(ctx context.Context, userID, sessionID string, creds *session.Credentials) (View, error) {
	s, err := m.lookup(userID, sessionID)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !creds.Present() {
		c := s.creds
		creds = &c
	}

	err = s.form.Submit(ctx, func(ctx context.Context, answers map[string]any) error {
		return m.gateway.Complete(ctx, CompleteRequest{
			UserID:   s.identity.UserID,
			UserType: s.identity.Role.String(),
			Answers:  answers,
		}, creds)
	})
	if creds.Present() {
		s.creds = *creds
	}
	if err != nil {
		m.logger.Warn("onboarding submit failed", zap.String("session_id", s.id), zap.Error(err))
		return s.view(), err
	}

	v := s.view()
	m.notifier.Notify(s.identity.UserID, EventSubmitted, map[string]string{
		"session_id":  s.id,
		"destination": v.Destination,
	})
	m.logger.Info("onboarding submitted", zap.String("session_id", s.id), zap.String("user_id", s.identity.UserID))
	return v, nil
}

func (m *Manager) Close(ctx context.Context, userID, sessionID string) error {
	s, err := m.lookup(userID, sessionID)
	if err != nil {
		return err
	}
	m.drop(s)
	return nil
}

// Sweep drops sessions idle for longer than the TTL and returns how many.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var idle []*Session
	for _, s := range m.sessions {
		s.mu.Lock()
		if s.lastSeen.Before(cutoff) {
			idle = append(idle, s)
		}
		s.mu.Unlock()
	}
	m.mu.Unlock()

	for _, s := range idle {
		m.drop(s)
	}
	if len(idle) > 0 {
		m.logger.Debug("onboarding sessions expired", zap.Int("count", len(idle)))
	}
	return len(idle)
}

// Run sweeps periodically until ctx is done, then closes every session.
func (m *Manager) Run(ctx context.Context) {
	every := m.ttl / 4
	if every < time.Second {
		every = time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Shutdown()
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.mu.Unlock()

	for _, s := range all {
		m.drop(s)
	}
	m.wg.Wait()
}

func (m *Manager) lookup(userID, sessionID string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok || s.identity.UserID != userID {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	now := m.now()
	expired := now.Sub(s.lastSeen) > m.ttl
	if !expired {
		s.lastSeen = now
	}
	s.mu.Unlock()

	if expired {
		m.drop(s)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) drop(s *Session) {
	m.mu.Lock()
	delete(m.sessions, s.id)
	m.mu.Unlock()

	s.tracker.Close()
	s.cancel()
}

func (m *Manager) triggerStart(s *Session) {
	if s.tracker.Started() {
		return
	}

	s.mu.Lock()
	creds := s.creds
	s.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		attempted, err := s.tracker.start(s.ctx, s.identity.UserID, s.identity.Role.String(), &creds)
		switch {
		case !attempted:
		case err == nil:
			m.notifier.Notify(s.identity.UserID, EventStarted, map[string]any{
				"session_id":  s.id,
				"total_steps": s.tracker.Status().Progress.TotalSteps,
			})
		case errors.Is(err, ErrTrackerClosed), errors.Is(err, context.Canceled):
		default:
			m.notifier.Notify(s.identity.UserID, EventStartFailed, map[string]string{
				"session_id": s.id,
				"error":      err.Error(),
			})
		}
	}()
}
