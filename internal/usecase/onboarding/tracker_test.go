package onboarding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"careerconnect/internal/pkg/session"

	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	starts    atomic.Int32
	completes atomic.Int32

	mu          sync.Mutex
	startErr    error
	completeErr error
	block       chan struct{}
	lastStart   StartRequest
	lastAnswers map[string]any
}

func (g *fakeGateway) Start(ctx context.Context, req StartRequest, _ *session.Credentials) (Progress, error) {
	g.starts.Add(1)
	g.mu.Lock()
	block := g.block
	g.lastStart = req
	err := g.startErr
	g.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return Progress{}, err
	}
	return Progress{UserID: req.UserID, UserType: req.UserType, CurrentStep: 1, TotalSteps: req.TotalSteps}, nil
}

func (g *fakeGateway) Complete(_ context.Context, req CompleteRequest, _ *session.Credentials) error {
	g.completes.Add(1)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastAnswers = req.Answers
	return g.completeErr
}

func (g *fakeGateway) setStartErr(err error) {
	g.mu.Lock()
	g.startErr = err
	g.mu.Unlock()
}

func creds(tok string) *session.Credentials {
	return &session.Credentials{AccessToken: tok}
}

func TestEnsureStarted_AtMostOnce(t *testing.T) {
	gw := &fakeGateway{}
	tr := NewTracker(gw, nil)

	for i := 0; i < 5; i++ {
		require.NoError(t, tr.EnsureStarted(context.Background(), "u1", "student", creds("a")))
	}
	require.EqualValues(t, 1, gw.starts.Load())
	require.Equal(t, StartRequest{UserID: "u1", UserType: "student", TotalSteps: 7}, gw.lastStart)

	st := tr.Status()
	require.True(t, st.Started)
	require.Empty(t, st.Error)
	require.Equal(t, 7, st.Progress.TotalSteps)
}

func TestEnsureStarted_ConcurrentCallersCoalesce(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{})}
	tr := NewTracker(gw, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = tr.EnsureStarted(context.Background(), "u1", "recruiter", creds("a"))
	}()
	require.Eventually(t, func() bool { return tr.Status().Pending }, time.Second, time.Millisecond)

	for i := 0; i < 10; i++ {
		require.NoError(t, tr.EnsureStarted(context.Background(), "u1", "recruiter", creds("a")))
	}
	close(gw.block)
	wg.Wait()

	require.EqualValues(t, 1, gw.starts.Load())
	require.True(t, tr.Started())
}

func TestEnsureStarted_UnknownRoleMakesNoCall(t *testing.T) {
	gw := &fakeGateway{}
	tr := NewTracker(gw, nil)

	for _, ut := range []string{"teamTechProfessional", "employer", "admin", "wizard"} {
		err := tr.EnsureStarted(context.Background(), "u1", ut, creds("a"))
		var ure *UnknownRoleError
		require.ErrorAs(t, err, &ure, ut)
		require.Equal(t, ut, ure.UserType)
	}
	require.Zero(t, gw.starts.Load())
	require.NotEmpty(t, tr.Status().Error)
}

func TestEnsureStarted_MissingInputs(t *testing.T) {
	gw := &fakeGateway{}
	tr := NewTracker(gw, nil)

	require.ErrorIs(t, tr.EnsureStarted(context.Background(), "", "student", nil), ErrMissingUserID)
	require.ErrorIs(t, tr.EnsureStarted(context.Background(), "u1", "  ", nil), ErrMissingUserType)
	require.Zero(t, gw.starts.Load())
}

func TestEnsureStarted_RetriesOnlyWhenInputsChange(t *testing.T) {
	gw := &fakeGateway{}
	gw.setStartErr(errors.New("backend down"))
	tr := NewTracker(gw, nil)

	require.Error(t, tr.EnsureStarted(context.Background(), "u1", "student", creds("a")))
	require.Error(t, tr.EnsureStarted(context.Background(), "u1", "student", creds("a")))
	require.EqualValues(t, 1, gw.starts.Load())
	require.Equal(t, "backend down", tr.Status().Error)

	gw.setStartErr(nil)
	require.NoError(t, tr.EnsureStarted(context.Background(), "u1", "student", creds("b")))
	require.EqualValues(t, 2, gw.starts.Load())
	require.True(t, tr.Started())
	require.Empty(t, tr.Status().Error)
}

func TestEnsureStarted_ResultAfterCloseIsDiscarded(t *testing.T) {
	gw := &fakeGateway{block: make(chan struct{})}
	tr := NewTracker(gw, nil)

	done := make(chan error, 1)
	go func() { done <- tr.EnsureStarted(context.Background(), "u1", "institution", creds("a")) }()
	require.Eventually(t, func() bool { return gw.starts.Load() == 1 }, time.Second, time.Millisecond)

	tr.Close()
	close(gw.block)

	require.ErrorIs(t, <-done, ErrTrackerClosed)
	require.False(t, tr.Started())
	require.ErrorIs(t, tr.EnsureStarted(context.Background(), "u1", "institution", creds("a")), ErrTrackerClosed)
	require.EqualValues(t, 1, gw.starts.Load())
}

func TestTotalStepsFor(t *testing.T) {
	for _, ut := range []string{"student", "recruiter", "institution", "individualTechProfessional"} {
		_, ok := TotalStepsFor(roleOf(ut))
		require.True(t, ok, ut)
	}
	_, ok := TotalStepsFor(roleOf("teamTechProfessional"))
	require.False(t, ok)
}

func TestStart_RepeatedFailureIsNotANewAttempt(t *testing.T) {
	gw := &fakeGateway{}
	gw.setStartErr(errors.New("backend down"))
	tr := NewTracker(gw, nil)
	ctx := context.Background()

	attempted, err := tr.start(ctx, "u1", "student", creds("a"))
	require.Error(t, err)
	require.True(t, attempted)

	attempted, err = tr.start(ctx, "u1", "student", creds("a"))
	require.Error(t, err)
	require.False(t, attempted)

	attempted, err = tr.start(ctx, "u1", "teamTechProfessional", creds("a"))
	require.Error(t, err)
	require.True(t, attempted)
	attempted, err = tr.start(ctx, "u1", "teamTechProfessional", creds("a"))
	var ure *UnknownRoleError
	require.ErrorAs(t, err, &ure)
	require.False(t, attempted)
	require.EqualValues(t, 1, gw.starts.Load())
}
