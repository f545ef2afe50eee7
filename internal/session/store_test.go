package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard-portal/internal/api"
	perrors "jobboard-portal/internal/common/errors"
	gateway "jobboard-portal/internal/common/http"
	"jobboard-portal/internal/common/logger"
	"jobboard-portal/internal/models"
)

// ==========================
// Fake backend
// ==========================

type handlerFunc func(req gateway.Request) (*gateway.Envelope, error)

type fakeBackend struct {
	mu     sync.Mutex
	routes map[string]handlerFunc
	calls  map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		routes: make(map[string]handlerFunc),
		calls:  make(map[string]int),
	}
}

func (f *fakeBackend) on(method, path string, h handlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = h
}

func (f *fakeBackend) reply(method, path string, env *gateway.Envelope) {
	f.on(method, path, func(gateway.Request) (*gateway.Envelope, error) { return env, nil })
}

func (f *fakeBackend) fail(method, path string) {
	f.on(method, path, func(req gateway.Request) (*gateway.Envelope, error) {
		return nil, perrors.NewTransportFailureError(method+" "+path, errors.New("connection refused"))
	})
}

func (f *fakeBackend) count(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method+" "+path]
}

func (f *fakeBackend) Do(ctx context.Context, req gateway.Request) (*gateway.Envelope, error) {
	key := req.Method + " " + req.Path
	if len(req.Query) > 0 {
		key += "?" + req.Query.Encode()
	}

	f.mu.Lock()
	f.calls[key]++
	h, ok := f.routes[key]
	f.mu.Unlock()

	if !ok {
		return nil, perrors.NewTransportFailureError(key, errors.New("no route"))
	}
	return h(req)
}

func ok(t *testing.T, data interface{}) *gateway.Envelope {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return &gateway.Envelope{Success: true, Data: raw}
}

func okRaw(data string) *gateway.Envelope {
	return &gateway.Envelope{Success: true, Data: json.RawMessage(data)}
}

func rejected(message string) *gateway.Envelope {
	return &gateway.Envelope{Success: false, Message: message}
}

var (
	activeJob = models.Job{ID: 1, Title: "Barista", Lifecycle: models.JobActive}
	endedJob  = models.Job{ID: 2, Title: "Courier", Lifecycle: models.JobEnded}
)

func seedBackend(t *testing.T, f *fakeBackend) {
	f.reply("GET", "/jobs", ok(t, []models.Job{activeJob, endedJob}))
	f.reply("GET", "/profile", ok(t, models.Profile{ID: 7, FullName: "Dana", Role: models.RoleEmployee}))
	f.reply("GET", "/subscription", ok(t, models.Subscription{ID: 3, Plan: models.PlanLimited, Status: models.SubscriptionActive}))
	f.reply("GET", "/jobs/user-applied", ok(t, []models.Application{}))
}

func newTestStore(t *testing.T, f *fakeBackend, strict bool) *Store {
	t.Helper()
	return NewStore(api.NewClient(f), Options{
		Strict: strict,
		Logger: logger.NewTestLogger(t),
	})
}

// ==========================
// Load
// ==========================

func TestStore_Load_PopulatesEverySlice(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("GET", "/jobs/user-applied", ok(t, []models.Application{{ID: 5, JobID: 1, Status: models.ApplicationApplied}}))
	store := newTestStore(t, f, true)

	require.NoError(t, store.Load(context.Background()))

	snap := store.Snapshot()
	assert.True(t, snap.Loaded)
	assert.NoError(t, snap.LoadErr)
	assert.Len(t, snap.Jobs, 2)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "Dana", snap.Profile.FullName)
	require.NotNil(t, snap.Subscription)
	assert.Equal(t, models.PlanLimited, snap.Subscription.Plan)
	require.Contains(t, snap.Applied, int64(1))
	assert.Equal(t, models.ApplicationApplied, snap.Applied[1].Status)
}

func TestStore_Load_PartialFailureKeepsSuccessfulSlices(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.fail("GET", "/profile")
	store := newTestStore(t, f, true)

	err := store.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeTransportFailure, perrors.CodeOf(err))

	snap := store.Snapshot()
	assert.Error(t, snap.LoadErr)
	assert.Nil(t, snap.Profile)
	assert.Len(t, snap.Jobs, 2, "jobs leg must complete despite the profile failure")
	assert.NotNil(t, snap.Subscription)
	assert.Equal(t, 1, f.count("GET", "/jobs/user-applied"))
}

func TestStore_Load_IsIdempotent(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	store := newTestStore(t, f, true)

	require.NoError(t, store.Load(context.Background()))
	f.reply("GET", "/jobs", ok(t, []models.Job{endedJob}))
	require.NoError(t, store.Load(context.Background()))

	snap := store.Snapshot()
	require.Len(t, snap.Jobs, 1)
	assert.Equal(t, int64(2), snap.Jobs[0].ID)
}

func TestStore_Load_MissingDataIsShapeMismatch(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("GET", "/jobs", &gateway.Envelope{Success: true})
	store := newTestStore(t, f, true)

	err := store.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeShapeMismatch, perrors.CodeOf(err))
	assert.Equal(t, perrors.ErrCodeShapeMismatch, perrors.CodeOf(store.LoadErr()))
}

func TestStore_Load_NullSubscriptionMeansNone(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("GET", "/subscription", okRaw("null"))
	store := newTestStore(t, f, true)

	require.NoError(t, store.Load(context.Background()))
	assert.Nil(t, store.Snapshot().Subscription)
}

func TestStore_EnsureLoaded_RetriesOnlyAfterFailure(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.fail("GET", "/profile")
	store := newTestStore(t, f, true)
	ctx := context.Background()

	require.Error(t, store.EnsureLoaded(ctx))
	f.reply("GET", "/profile", ok(t, models.Profile{ID: 7}))
	require.NoError(t, store.EnsureLoaded(ctx))
	require.NoError(t, store.EnsureLoaded(ctx))

	assert.Equal(t, 2, f.count("GET", "/jobs"))
}

func TestStore_Search(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("GET", "/jobs?search=barista", ok(t, []models.Job{activeJob}))
	store := newTestStore(t, f, true)

	require.NoError(t, store.Search(context.Background(), "  barista "))
	snap := store.Snapshot()
	require.Len(t, snap.Jobs, 1)
	assert.Equal(t, "Barista", snap.Jobs[0].Title)
	assert.Equal(t, "barista", snap.Query)

	f.reply("GET", "/jobs?search=none", rejected(""))
	err := store.Search(context.Background(), "none")
	require.Error(t, err)
	assert.Equal(t, MsgSearchFailed, perrors.UserMessage(err, ""))
	assert.Len(t, store.Snapshot().Jobs, 1, "failed search keeps the previous listing")
}

func TestStore_Job_FallsBackToDetailEndpoint(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("GET", "/jobs/9", ok(t, models.Job{ID: 9, Title: "Cook", Lifecycle: models.JobActive}))
	store := newTestStore(t, f, true)
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	job, err := store.Job(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Barista", job.Title)
	assert.Equal(t, 0, f.count("GET", "/jobs/1"))

	job, err = store.Job(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "Cook", job.Title)
}

// ==========================
// Apply / Cancel
// ==========================

func TestStore_Apply_PatchesInlineApplication(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("POST", "/jobs/1/apply", okRaw(`{"job_id":1,"status":"applied"}`))
	store := newTestStore(t, f, true)
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	require.NoError(t, store.Apply(ctx, 1))

	app := store.Snapshot().Application(1)
	require.NotNil(t, app)
	assert.Equal(t, models.ApplicationApplied, app.Status)
	assert.Equal(t, 1, f.count("GET", "/jobs/user-applied"), "inline application must not trigger a refetch")
}

func TestStore_Apply_RefetchesWithoutInlineApplication(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("POST", "/jobs/1/apply", &gateway.Envelope{Success: true, Message: "Applied"})
	store := newTestStore(t, f, true)
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	f.reply("GET", "/jobs/user-applied", ok(t, []models.Application{
		{ID: 11, JobID: 1, Status: models.ApplicationApplied},
		{ID: 12, JobID: 4, Status: models.ApplicationDone},
	}))
	require.NoError(t, store.Apply(ctx, 1))

	snap := store.Snapshot()
	assert.Equal(t, 2, f.count("GET", "/jobs/user-applied"))
	assert.Equal(t, int64(11), snap.Applied[1].ID)
	assert.Contains(t, snap.Applied, int64(4), "refetch replaces the mapping wholesale")
}

func TestStore_Apply_RefetchFailureStillRecordsApplication(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("POST", "/jobs/1/apply", okRaw(`{"unexpected":true}`))
	store := newTestStore(t, f, true)
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	f.fail("GET", "/jobs/user-applied")
	require.NoError(t, store.Apply(ctx, 1))
	assert.Contains(t, store.Snapshot().Applied, int64(1))
}

func TestStore_Apply_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		env     *gateway.Envelope
		wantMsg string
	}{
		{"backend message", rejected("Already applied"), "Already applied"},
		{"no message", rejected(""), "failed to apply"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeBackend()
			seedBackend(t, f)
			f.reply("GET", "/jobs/user-applied", ok(t, []models.Application{{ID: 5, JobID: 3, Status: models.ApplicationAccepted}}))
			f.reply("POST", "/jobs/1/apply", tt.env)
			store := newTestStore(t, f, true)
			ctx := context.Background()
			require.NoError(t, store.Load(ctx))
			before := store.Snapshot().Applied

			err := store.Apply(ctx, 1)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, perrors.UserMessage(err, ""))
			assert.Equal(t, perrors.ErrCodeBackendRejected, perrors.CodeOf(err))
			assert.Equal(t, before, store.Snapshot().Applied)
		})
	}
}

func TestStore_Apply_TransportFailureUsesGenericMessage(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.fail("POST", "/jobs/1/apply")
	store := newTestStore(t, f, true)

	err := store.Apply(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "failed to apply", perrors.UserMessage(err, ""))
	assert.Equal(t, perrors.ErrCodeTransportFailure, perrors.CodeOf(err))
	assert.Empty(t, store.Snapshot().Applied)
}

func TestStore_Apply_InFlightGuard(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.on("POST", "/jobs/1/apply", func(gateway.Request) (*gateway.Envelope, error) {
		close(entered)
		<-release
		return okRaw(`{"job_id":1,"status":"applied"}`), nil
	})
	f.reply("POST", "/jobs/2/apply", okRaw(`{"job_id":2,"status":"applied"}`))
	store := newTestStore(t, f, true)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- store.Apply(ctx, 1) }()
	<-entered

	err := store.Apply(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeOperationInFlight, perrors.CodeOf(err))

	err = store.Cancel(ctx, 1)
	assert.Equal(t, perrors.ErrCodeOperationInFlight, perrors.CodeOf(err), "cancel shares the per-job guard")

	require.NoError(t, store.Apply(ctx, 2), "other jobs are not blocked")

	close(release)
	require.NoError(t, <-done)
	assert.Contains(t, store.Snapshot().Applied, int64(1))

	f.reply("POST", "/jobs/1/cancel-apply", &gateway.Envelope{Success: true})
	require.NoError(t, store.Cancel(ctx, 1), "guard is released after completion")
}

// blockAppliedRefetch makes the next /jobs/user-applied call wait for release
// and then answer with stale. It returns a channel closed once the call started.
func blockAppliedRefetch(t *testing.T, f *fakeBackend, stale []models.Application) (entered, release chan struct{}) {
	t.Helper()
	entered = make(chan struct{})
	release = make(chan struct{})
	env := ok(t, stale)
	var once sync.Once
	f.on("GET", "/jobs/user-applied", func(gateway.Request) (*gateway.Envelope, error) {
		once.Do(func() { close(entered) })
		<-release
		return env, nil
	})
	return entered, release
}

func newStoreWithApplied(t *testing.T, f *fakeBackend, applied []models.Application) *Store {
	t.Helper()
	seedBackend(t, f)
	f.reply("GET", "/jobs/user-applied", ok(t, applied))
	f.reply("POST", "/jobs/3/cancel-apply", &gateway.Envelope{Success: true})
	store := newTestStore(t, f, true)
	require.NoError(t, store.Load(context.Background()))
	require.Contains(t, store.Snapshot().Applied, int64(3))
	return store
}

func TestStore_Apply_RefetchDoesNotUndoConcurrentCancel(t *testing.T) {
	f := newFakeBackend()
	store := newStoreWithApplied(t, f, []models.Application{{ID: 30, JobID: 3, Status: models.ApplicationApplied}})
	f.reply("POST", "/jobs/1/apply", &gateway.Envelope{Success: true})
	ctx := context.Background()

	entered, release := blockAppliedRefetch(t, f, []models.Application{
		{ID: 30, JobID: 3, Status: models.ApplicationApplied},
		{ID: 10, JobID: 1, Status: models.ApplicationApplied},
	})

	done := make(chan error, 1)
	go func() { done <- store.Apply(ctx, 1) }()
	<-entered
	require.NoError(t, store.Cancel(ctx, 3))
	close(release)
	require.NoError(t, <-done)

	snap := store.Snapshot()
	assert.NotContains(t, snap.Applied, int64(3), "a finished cancel stays cancelled")
	require.Contains(t, snap.Applied, int64(1))
	assert.Equal(t, int64(10), snap.Applied[1].ID, "the applied job is taken from the refetch")
}

func TestStore_Load_DoesNotUndoConcurrentCancel(t *testing.T) {
	f := newFakeBackend()
	store := newStoreWithApplied(t, f, []models.Application{{ID: 30, JobID: 3, Status: models.ApplicationApplied}})
	ctx := context.Background()

	entered, release := blockAppliedRefetch(t, f, []models.Application{
		{ID: 30, JobID: 3, Status: models.ApplicationApplied},
	})

	done := make(chan error, 1)
	go func() { done <- store.Load(ctx) }()
	<-entered
	require.NoError(t, store.Cancel(ctx, 3))
	close(release)
	require.NoError(t, <-done)

	assert.NotContains(t, store.Snapshot().Applied, int64(3))
}

func TestStore_Rate_RefetchDoesNotUndoConcurrentCancel(t *testing.T) {
	f := newFakeBackend()
	store := newStoreWithApplied(t, f, []models.Application{
		{ID: 30, JobID: 3, Status: models.ApplicationApplied},
		{ID: 5, JobID: 1, Status: models.ApplicationDone},
	})
	f.reply("POST", "/jobs/user-applied/rate/5", &gateway.Envelope{Success: true})
	ctx := context.Background()

	entered, release := blockAppliedRefetch(t, f, []models.Application{
		{ID: 30, JobID: 3, Status: models.ApplicationApplied},
		{ID: 5, JobID: 1, Status: models.ApplicationDone, Rated: true},
	})

	done := make(chan error, 1)
	go func() { done <- store.Rate(ctx, 5, models.Rating{Score: 4}) }()
	<-entered
	require.NoError(t, store.Cancel(ctx, 3))
	close(release)
	require.NoError(t, <-done)

	snap := store.Snapshot()
	assert.NotContains(t, snap.Applied, int64(3))
	assert.True(t, snap.Applied[1].Rated, "the rated application is still refreshed")
}

func TestStore_Cancel_RemovesOnlyThatJob(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("GET", "/jobs/user-applied", ok(t, []models.Application{
		{ID: 5, JobID: 1, Status: models.ApplicationApplied},
		{ID: 6, JobID: 2, Status: models.ApplicationApplied},
	}))
	f.reply("POST", "/jobs/1/cancel-apply", &gateway.Envelope{Success: true})
	store := newTestStore(t, f, true)
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	require.NoError(t, store.Cancel(ctx, 1))

	snap := store.Snapshot()
	assert.NotContains(t, snap.Applied, int64(1))
	assert.Contains(t, snap.Applied, int64(2))
}

func TestStore_Cancel_WithoutApplication(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("GET", "/jobs/user-applied", ok(t, []models.Application{{ID: 6, JobID: 2, Status: models.ApplicationApplied}}))
	f.reply("POST", "/jobs/1/cancel-apply", rejected(""))
	store := newTestStore(t, f, true)
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	err := store.Cancel(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeBackendRejected, perrors.CodeOf(err))
	assert.Equal(t, "failed to cancel application", perrors.UserMessage(err, ""))
	assert.Contains(t, store.Snapshot().Applied, int64(2), "unrelated entry must survive")
}

func TestStore_Cancel_TransportFailureLeavesMapping(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("GET", "/jobs/user-applied", ok(t, []models.Application{{ID: 5, JobID: 1, Status: models.ApplicationApplied}}))
	f.fail("POST", "/jobs/1/cancel-apply")
	store := newTestStore(t, f, true)
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	require.Error(t, store.Cancel(ctx, 1))
	assert.Contains(t, store.Snapshot().Applied, int64(1))
}

// ==========================
// Comments
// ==========================

func TestStore_GetComments_NetworkFailureYieldsEmpty(t *testing.T) {
	f := newFakeBackend()
	f.fail("GET", "/jobs/99/comments")
	store := newTestStore(t, f, true)

	comments := store.GetComments(context.Background(), 99)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)
}

func TestStore_GetComments_RejectedYieldsEmpty(t *testing.T) {
	f := newFakeBackend()
	f.reply("GET", "/jobs/5/comments", rejected("Forbidden"))
	store := newTestStore(t, f, false)

	assert.Empty(t, store.GetComments(context.Background(), 5))
}

const mixedComments = `[
	{"id":1,"job_id":5,"author_id":7,"author_name":"Dana","text":"Is this remote?","created_at":"2024-05-01T09:00:00Z"},
	{"id":2,"job_id":5,"user_id":8,"content":"legacy shape"},
	{"id":3,"job_id":5,"author_id":8,"author_name":"Eli","text":"Yes","created_at":"2024-05-01T10:00:00Z"}
]`

func TestStore_GetComments_StrictFailsWholeList(t *testing.T) {
	f := newFakeBackend()
	f.reply("GET", "/jobs/5/comments", okRaw(mixedComments))
	store := newTestStore(t, f, true)

	assert.Empty(t, store.GetComments(context.Background(), 5))
}

func TestStore_GetComments_LenientSkipsBadItems(t *testing.T) {
	f := newFakeBackend()
	f.reply("GET", "/jobs/5/comments", okRaw(mixedComments))
	store := newTestStore(t, f, false)

	comments := store.GetComments(context.Background(), 5)
	require.Len(t, comments, 2)
	assert.Equal(t, "Is this remote?", comments[0].Text)
	assert.Equal(t, "Eli", comments[1].AuthorName)
}

func TestStore_CreateAndDeleteComment(t *testing.T) {
	f := newFakeBackend()
	created := okRaw(`{"id":10,"job_id":5,"author_id":7,"text":"hi"}`)
	f.reply("POST", "/jobs/5/comments", created)
	f.reply("DELETE", "/comments/10", &gateway.Envelope{Success: true, Message: "Deleted"})
	f.reply("DELETE", "/comments/11", rejected("Not your comment"))
	store := newTestStore(t, f, true)
	ctx := context.Background()

	env, err := store.CreateComment(ctx, 5, "hi")
	require.NoError(t, err)
	assert.Same(t, created, env)

	env, err = store.DeleteComment(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Deleted", env.Message)

	env, err = store.DeleteComment(ctx, 11)
	require.Error(t, err)
	assert.Nil(t, env)
	assert.Equal(t, "Not your comment", perrors.UserMessage(err, ""))

	assert.Equal(t, 0, f.count("GET", "/jobs/5/comments"), "mutations never touch the comment list")
}

// ==========================
// Status / rating / subscription
// ==========================

func TestStore_UpdateStatus_ReloadsOnSuccess(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("POST", "/jobs/user-applied/5", &gateway.Envelope{Success: true})
	store := newTestStore(t, f, true)
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	require.NoError(t, store.UpdateStatus(ctx, 5, models.ApplicationAccepted))
	assert.Equal(t, 2, f.count("GET", "/jobs"))
	assert.Equal(t, 2, f.count("GET", "/profile"))
}

func TestStore_UpdateStatus_FailureRaisesWithoutReload(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("POST", "/jobs/user-applied/5", rejected("Not allowed"))
	store := newTestStore(t, f, true)

	err := store.UpdateStatus(context.Background(), 5, models.ApplicationAccepted)
	require.Error(t, err)
	assert.Equal(t, "Not allowed", perrors.UserMessage(err, ""))
	assert.Equal(t, 0, f.count("GET", "/jobs"))
}

func TestStore_UpdateStatus_ReloadFailureIsReturned(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("POST", "/jobs/user-applied/5", &gateway.Envelope{Success: true})
	f.fail("GET", "/jobs")
	store := newTestStore(t, f, true)

	err := store.UpdateStatus(context.Background(), 5, models.ApplicationDone)
	require.Error(t, err)
	assert.Equal(t, perrors.ErrCodeTransportFailure, perrors.CodeOf(err))
}

func TestStore_Rate_RefreshesApplied(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("POST", "/jobs/user-applied/rate/5", &gateway.Envelope{Success: true})
	store := newTestStore(t, f, true)
	ctx := context.Background()

	f.reply("GET", "/jobs/user-applied", ok(t, []models.Application{{ID: 5, JobID: 1, Status: models.ApplicationDone, Rated: true}}))
	require.NoError(t, store.Rate(ctx, 5, models.Rating{Score: 5}))
	assert.True(t, store.Snapshot().Applied[1].Rated)

	f.reply("POST", "/jobs/user-applied/rate/6", rejected("Already rated"))
	err := store.Rate(ctx, 6, models.Rating{Score: 4})
	assert.Equal(t, "Already rated", perrors.UserMessage(err, ""))
}

func TestStore_SubscribePlansHistory(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	f.reply("GET", "/subscription-methods", ok(t, []models.SubscriptionMethod{
		{ID: 1, Plan: models.PlanLimited, Name: "Limited"},
		{ID: 2, Plan: models.PlanUnlimited, Name: "Unlimited"},
	}))
	f.reply("GET", "/subscription/history", ok(t, []models.SubscriptionHistoryEntry{{ID: 1, Plan: models.PlanLimited}}))
	f.reply("POST", "/subscription/apply/2", &gateway.Envelope{Success: true})
	store := newTestStore(t, f, true)
	ctx := context.Background()

	plans, err := store.Plans(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 2)

	history, err := store.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	f.reply("GET", "/subscription", ok(t, models.Subscription{ID: 9, Plan: models.PlanUnlimited, Status: models.SubscriptionPending}))
	require.NoError(t, store.Subscribe(ctx, 2))

	snap := store.Snapshot()
	require.NotNil(t, snap.Subscription)
	assert.Equal(t, models.SubscriptionPending, snap.Subscription.Status)
	assert.Len(t, snap.Plans, 2)
	assert.Len(t, snap.History, 1)

	f.reply("POST", "/subscription/apply/1", rejected(""))
	err = store.Subscribe(ctx, 1)
	assert.Equal(t, MsgSubscribeFailed, perrors.UserMessage(err, ""))
}

// ==========================
// Snapshot / Clear
// ==========================

func TestStore_SnapshotIsACopy(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)
	store := newTestStore(t, f, true)
	require.NoError(t, store.Load(context.Background()))

	snap := store.Snapshot()
	snap.Jobs[0].Title = "mutated"
	snap.Applied[42] = models.Application{JobID: 42}
	snap.Profile.FullName = "mutated"

	fresh := store.Snapshot()
	assert.Equal(t, "Barista", fresh.Jobs[0].Title)
	assert.NotContains(t, fresh.Applied, int64(42))
	assert.Equal(t, "Dana", fresh.Profile.FullName)
}

func TestStore_ClearDiscardsLateResults(t *testing.T) {
	f := newFakeBackend()
	seedBackend(t, f)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.on("POST", "/jobs/1/apply", func(gateway.Request) (*gateway.Envelope, error) {
		close(entered)
		<-release
		return okRaw(`{"job_id":1,"status":"applied"}`), nil
	})
	store := newTestStore(t, f, true)
	ctx := context.Background()
	require.NoError(t, store.Load(ctx))

	done := make(chan error, 1)
	go func() { done <- store.Apply(ctx, 1) }()
	<-entered

	store.Clear()
	close(release)
	require.NoError(t, <-done)

	snap := store.Snapshot()
	assert.False(t, snap.Loaded)
	assert.Empty(t, snap.Jobs)
	assert.Empty(t, snap.Applied, "result from before Clear must be discarded")
}
