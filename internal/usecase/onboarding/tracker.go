package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"careerconnect/internal/domain/role"
	"careerconnect/internal/logging"
	"careerconnect/internal/pkg/session"

	"go.uber.org/zap"
)

var (
	ErrMissingUserID   = errors.New("user id is required")
	ErrMissingUserType = errors.New("user type is required")
	ErrTrackerClosed   = errors.New("onboarding tracker closed")
)

// UnknownRoleError is returned before any network call when the user type
// has no entry in the step table.
type UnknownRoleError struct {
	UserType string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("no onboarding step count for user type %q", e.UserType)
}

// stepCounts is the remote progress table. teamTechProfessional, employer and
// admin are absent on purpose.
var stepCounts = map[role.Role]int{
	role.Student:                    7,
	role.Recruiter:                  7,
	role.Institution:                7,
	role.IndividualTechProfessional: 7,
}

func TotalStepsFor(r role.Role) (int, bool) {
	n, ok := stepCounts[r]
	return n, ok
}

type TrackerStatus struct {
	Started  bool     `json:"started"`
	Pending  bool     `json:"pending"`
	Error    string   `json:"error,omitempty"`
	Progress Progress `json:"progress"`
}

// Tracker registers the remote progress record for one onboarding session.
// It issues at most one successful start call over its lifetime and never
// two concurrent ones.
type Tracker struct {
	gateway Gateway
	logger  *zap.Logger

	mu        sync.Mutex
	started   bool
	inFlight  bool
	closed    bool
	errMsg    string
	failedKey string
	failedErr error
	progress  Progress
}

func NewTracker(gateway Gateway, logger *zap.Logger) *Tracker {
	return &Tracker{gateway: gateway, logger: logging.OrNop(logger)}
}

// EnsureStarted issues the start call unless one already succeeded or is in
// flight. After a failure it only retries once the inputs change.
func (t *Tracker) EnsureStarted(ctx context.Context, userID, userType string, creds *session.Credentials) error {
	_, err := t.start(ctx, userID, userType, creds)
	return err
}

// start reports whether this call made a fresh attempt: it checked new
// inputs or issued the network call. Coalesced calls and repeats of a failed
// attempt report false.
func (t *Tracker) start(ctx context.Context, userID, userType string, creds *session.Credentials) (bool, error) {
	userID = strings.TrimSpace(userID)
	userType = strings.TrimSpace(userType)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return false, ErrTrackerClosed
	}
	if t.started || t.inFlight {
		t.mu.Unlock()
		return false, nil
	}

	key := triggerKey(userID, userType, creds)
	if t.failedKey != "" && t.failedKey == key {
		err := t.failedErr
		t.mu.Unlock()
		return false, err
	}

	total, err := checkInputs(userID, userType)
	if err != nil {
		t.errMsg = err.Error()
		t.failedKey = key
		t.failedErr = err
		t.mu.Unlock()
		return true, err
	}
	t.inFlight = true
	t.mu.Unlock()

	p, err := t.gateway.Start(ctx, StartRequest{UserID: userID, UserType: userType, TotalSteps: total}, creds)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.inFlight = false

	if t.closed {
		t.logger.Debug("onboarding start result discarded", zap.String("user_id", userID))
		return false, ErrTrackerClosed
	}
	if err != nil {
		t.errMsg = err.Error()
		t.failedKey = key
		t.failedErr = err
		t.logger.Warn("onboarding start failed",
			zap.String("user_id", userID), zap.String("user_type", userType), zap.Error(err))
		return true, err
	}

	t.started = true
	t.progress = p
	t.errMsg = ""
	t.failedKey = ""
	t.failedErr = nil
	t.logger.Info("onboarding started",
		zap.String("user_id", userID), zap.String("user_type", userType), zap.Int("total_steps", total))
	return true, nil
}

func (t *Tracker) Status() TrackerStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return TrackerStatus{Started: t.started, Pending: t.inFlight, Error: t.errMsg, Progress: t.progress}
}

func (t *Tracker) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// Close tears the tracker down. A start call still in flight completes but
// its result is dropped.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

func checkInputs(userID, userType string) (int, error) {
	if userID == "" {
		return 0, ErrMissingUserID
	}
	if userType == "" {
		return 0, ErrMissingUserType
	}
	total, ok := TotalStepsFor(role.Parse(userType))
	if !ok {
		return 0, &UnknownRoleError{UserType: userType}
	}
	return total, nil
}

func triggerKey(userID, userType string, creds *session.Credentials) string {
	tok := ""
	if creds != nil {
		tok = creds.AccessToken
	}
	return userID + "\x00" + userType + "\x00" + tok
}
