// Package session holds the per-browser-session cache of jobs, applications and
// subscription state, and the registry that owns one cache per signed-in session.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"jobboard-portal/internal/api"
	perrors "jobboard-portal/internal/common/errors"
	gateway "jobboard-portal/internal/common/http"
	"jobboard-portal/internal/common/logger"
	"jobboard-portal/internal/common/metrics"
	"jobboard-portal/internal/common/observability"
	"jobboard-portal/internal/common/validation"
	"jobboard-portal/internal/models"
)

// Fallback messages used when the backend rejects without saying why.
const (
	MsgApplyFailed        = "failed to apply"
	MsgCancelFailed       = "failed to cancel application"
	MsgCommentFailed      = "failed to post comment"
	MsgDeleteFailed       = "failed to delete comment"
	MsgStatusFailed       = "failed to update application status"
	MsgRateFailed         = "failed to submit rating"
	MsgSubscribeFailed    = "failed to subscribe"
	MsgLoadFailed         = "failed to load your dashboard"
	MsgPlansFailed        = "failed to load subscription plans"
	MsgHistoryFailed      = "failed to load subscription history"
	MsgSearchFailed       = "failed to search jobs"
	MsgJobFailed          = "failed to load job"
	msgCommentsListFailed = "failed to load comments"
)

type Options struct {
	// Strict fails a whole comment list on the first contract violation instead of
	// skipping the offending items.
	Strict        bool
	Validator     *validation.Validator
	Observability *observability.Observability
	Logger        logger.Logger
}

// Store caches one user's view of the job board. All methods are safe for
// concurrent use.
type Store struct {
	client    *api.Client
	validator *validation.Validator
	strict    bool
	obs       *observability.Observability
	logger    logger.Logger

	mu           sync.RWMutex
	generation   uint64
	loaded       bool
	loadErr      error
	profile      *models.Profile
	jobs         []models.Job
	query        string
	subscription *models.Subscription
	applied      map[int64]models.Application
	plans        []models.SubscriptionMethod
	history      []models.SubscriptionHistoryEntry

	// appliedVersion counts writes to applied. A refetch that started before a
	// concurrent write only patches the keys it was asked about.
	appliedVersion uint64

	inflightMu sync.Mutex
	inflight   map[int64]struct{}
}

func NewStore(client *api.Client, opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	validator := opts.Validator
	if validator == nil {
		validator = validation.MustNewValidator()
	}
	return &Store{
		client:    client,
		validator: validator,
		strict:    opts.Strict,
		obs:       opts.Observability,
		logger:    log.WithFields(map[string]interface{}{"component": "session_store"}),
		applied:   make(map[int64]models.Application),
		inflight:  make(map[int64]struct{}),
	}
}

// ==========================
// Load
// ==========================

// Load fetches jobs, profile, current subscription and applied jobs concurrently.
// Each slice is replaced as soon as its own request succeeds; a failing request
// never stops the others. The first failure is retained and returned.
func (s *Store) Load(ctx context.Context) (err error) {
	defer s.observe(ctx, "load", time.Now(), &err)
	gen := s.currentGeneration()

	var g errgroup.Group
	g.Go(func() error {
		jobs, err := s.fetchJobs(ctx, "")
		if err != nil {
			return err
		}
		s.commit(gen, func() {
			s.jobs = jobs
			s.query = ""
		})
		return nil
	})
	g.Go(func() error {
		var profile models.Profile
		env, err := s.client.Profile.Get(ctx)
		if err := decodeData(env, err, "profile", MsgLoadFailed, &profile); err != nil {
			return err
		}
		s.commit(gen, func() { s.profile = &profile })
		return nil
	})
	g.Go(func() error {
		sub, err := s.fetchSubscription(ctx)
		if err != nil {
			return err
		}
		s.commit(gen, func() { s.subscription = sub })
		return nil
	})
	g.Go(func() error {
		since := s.currentAppliedVersion()
		applied, err := s.fetchApplied(ctx)
		if err != nil {
			return err
		}
		s.commit(gen, func() { s.installApplied(since, applied) })
		return nil
	})

	err = g.Wait()
	s.commit(gen, func() {
		s.loaded = true
		s.loadErr = err
	})
	if err != nil {
		s.logger.Warn("session load incomplete", map[string]interface{}{
			"errorCode": perrors.CodeOf(err),
			"error":     err.Error(),
		})
	}
	return err
}

// EnsureLoaded runs Load when the store has never loaded or the last load failed.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	s.mu.RLock()
	needed := !s.loaded || s.loadErr != nil
	s.mu.RUnlock()
	if !needed {
		return nil
	}
	return s.Load(ctx)
}

func (s *Store) LoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Search replaces the job collection with the backend's filtered listing.
func (s *Store) Search(ctx context.Context, query string) (err error) {
	defer s.observe(ctx, "search", time.Now(), &err)
	gen := s.currentGeneration()

	query = strings.TrimSpace(query)
	jobs, err := s.fetchJobs(ctx, query)
	if err != nil {
		return err
	}
	s.commit(gen, func() {
		s.jobs = jobs
		s.query = query
	})
	return nil
}

// Job returns a job from the cached collection, falling back to the detail
// endpoint for jobs outside the current listing.
func (s *Store) Job(ctx context.Context, jobID int64) (job models.Job, err error) {
	s.mu.RLock()
	for _, j := range s.jobs {
		if j.ID == jobID {
			s.mu.RUnlock()
			return j, nil
		}
	}
	s.mu.RUnlock()

	defer s.observe(ctx, "job", time.Now(), &err)
	env, err := s.client.Jobs.Get(ctx, jobID)
	err = decodeData(env, err, "job", MsgJobFailed, &job)
	return job, err
}

// ==========================
// Mutations
// ==========================

// Apply submits an application for jobID. The store does not check the job's
// lifecycle or whether an application already exists.
func (s *Store) Apply(ctx context.Context, jobID int64) (err error) {
	defer s.observe(ctx, "apply", time.Now(), &err)

	release, err := s.acquire(jobID)
	if err != nil {
		return err
	}
	defer release()

	gen := s.currentGeneration()
	env, err := s.client.Jobs.Apply(ctx, jobID)
	if err := mutationError(env, err, MsgApplyFailed); err != nil {
		return err
	}

	if app, ok := s.inlineApplication(env, jobID); ok {
		s.commit(gen, func() { s.setApplied(jobID, app) })
		return nil
	}

	since := s.currentAppliedVersion()
	applied, refetchErr := s.fetchApplied(ctx)
	if refetchErr != nil {
		s.logger.Warn("applied jobs refresh failed after apply", map[string]interface{}{
			"jobId": jobID,
			"error": refetchErr.Error(),
		})
	}
	s.commit(gen, func() {
		if refetchErr == nil {
			s.installApplied(since, applied, jobID)
		}
		if _, ok := s.applied[jobID]; !ok {
			s.setApplied(jobID, models.Application{JobID: jobID, Status: models.ApplicationApplied})
		}
	})
	return nil
}

// Cancel withdraws the application for jobID. Only that key is ever removed.
func (s *Store) Cancel(ctx context.Context, jobID int64) (err error) {
	defer s.observe(ctx, "cancel", time.Now(), &err)

	release, err := s.acquire(jobID)
	if err != nil {
		return err
	}
	defer release()

	gen := s.currentGeneration()
	env, err := s.client.Jobs.CancelApply(ctx, jobID)
	if err := mutationError(env, err, MsgCancelFailed); err != nil {
		return err
	}
	s.commit(gen, func() {
		delete(s.applied, jobID)
		s.appliedVersion++
	})
	return nil
}

// CreateComment posts a comment and returns the raw envelope. Cached state is not
// touched; callers re-fetch the job's comments.
func (s *Store) CreateComment(ctx context.Context, jobID int64, text string) (env *gateway.Envelope, err error) {
	defer s.observe(ctx, "create_comment", time.Now(), &err)

	env, err = s.client.Comments.Create(ctx, jobID, text)
	if err := mutationError(env, err, MsgCommentFailed); err != nil {
		return nil, err
	}
	return env, nil
}

func (s *Store) DeleteComment(ctx context.Context, commentID int64) (env *gateway.Envelope, err error) {
	defer s.observe(ctx, "delete_comment", time.Now(), &err)

	env, err = s.client.Comments.Delete(ctx, commentID)
	if err := mutationError(env, err, MsgDeleteFailed); err != nil {
		return nil, err
	}
	return env, nil
}

// UpdateStatus changes an application's status and then reloads everything, since
// a status change can affect several views.
func (s *Store) UpdateStatus(ctx context.Context, applicationID int64, status models.ApplicationStatus) (err error) {
	defer s.observe(ctx, "update_status", time.Now(), &err)

	env, err := s.client.Applications.UpdateStatus(ctx, applicationID, status)
	if err := mutationError(env, err, MsgStatusFailed); err != nil {
		return err
	}

	if err := s.Load(ctx); err != nil {
		s.logger.Error("reload after status update failed", map[string]interface{}{
			"applicationId": applicationID,
			"status":        string(status),
			"error":         err.Error(),
		})
		return err
	}
	return nil
}

// Rate rates the counterparty of a finished application and refreshes the
// applied set so the rated flag is current.
func (s *Store) Rate(ctx context.Context, applicationID int64, rating models.Rating) (err error) {
	defer s.observe(ctx, "rate", time.Now(), &err)
	gen := s.currentGeneration()

	env, err := s.client.Applications.Rate(ctx, applicationID, rating)
	if err := mutationError(env, err, MsgRateFailed); err != nil {
		return err
	}

	since := s.currentAppliedVersion()
	applied, err := s.fetchApplied(ctx)
	if err != nil {
		s.logger.Warn("applied jobs refresh failed after rating", map[string]interface{}{
			"applicationId": applicationID,
			"error":         err.Error(),
		})
		return nil
	}
	s.commit(gen, func() {
		var rated []int64
		for jobID, app := range applied {
			if app.ID == applicationID {
				rated = append(rated, jobID)
			}
		}
		s.installApplied(since, applied, rated...)
	})
	return nil
}

// Subscribe requests a plan and refreshes the current subscription.
func (s *Store) Subscribe(ctx context.Context, methodID int64) (err error) {
	defer s.observe(ctx, "subscribe", time.Now(), &err)
	gen := s.currentGeneration()

	env, err := s.client.Subscriptions.Apply(ctx, methodID)
	if err := mutationError(env, err, MsgSubscribeFailed); err != nil {
		return err
	}

	sub, err := s.fetchSubscription(ctx)
	if err != nil {
		s.logger.Warn("subscription refresh failed after subscribe", map[string]interface{}{
			"methodId": methodID,
			"error":    err.Error(),
		})
		return nil
	}
	s.commit(gen, func() { s.subscription = sub })
	return nil
}

// ==========================
// Reads
// ==========================

// GetComments returns the job's comments. It never fails: transport errors,
// rejections and contract violations are logged and yield an empty list.
func (s *Store) GetComments(ctx context.Context, jobID int64) []models.Comment {
	var err error
	defer s.observe(ctx, "get_comments", time.Now(), &err)

	env, err := s.client.Comments.List(ctx, jobID)
	if err = dataError(env, err, "comments", msgCommentsListFailed); err != nil {
		s.logger.Warn("comments unavailable", map[string]interface{}{
			"jobId":     jobID,
			"errorCode": perrors.CodeOf(err),
			"error":     err.Error(),
		})
		return []models.Comment{}
	}

	comments, err := s.decodeComments(jobID, env)
	if err != nil {
		s.logger.Error("comment contract violation", map[string]interface{}{
			"jobId":   jobID,
			"details": perrors.Normalize(err).Details,
		})
		return []models.Comment{}
	}
	return comments
}

func (s *Store) decodeComments(jobID int64, env *gateway.Envelope) ([]models.Comment, error) {
	items, err := validation.SplitArray(env.Data)
	if err != nil {
		return nil, perrors.NewContractViolationError("comment list", []string{err.Error()})
	}

	comments := make([]models.Comment, 0, len(items))
	for i, item := range items {
		problems := s.validator.Validate(validation.ResourceComment, item).Messages()
		var c models.Comment
		if len(problems) == 0 {
			if err := decodeRaw(item, &c); err != nil {
				problems = []string{err.Error()}
			}
		}
		if len(problems) == 0 {
			comments = append(comments, c)
			continue
		}

		if s.strict {
			return nil, perrors.NewContractViolationError("comment",
				append([]string{fmt.Sprintf("item %d", i)}, problems...))
		}
		s.logger.Warn("skipping malformed comment", map[string]interface{}{
			"jobId":    jobID,
			"index":    i,
			"problems": problems,
		})
	}
	return comments, nil
}

// Plans returns the subscription plans on offer and caches them.
func (s *Store) Plans(ctx context.Context) (plans []models.SubscriptionMethod, err error) {
	defer s.observe(ctx, "plans", time.Now(), &err)
	gen := s.currentGeneration()

	env, err := s.client.Subscriptions.Methods(ctx)
	if err := decodeData(env, err, "subscription methods", MsgPlansFailed, &plans); err != nil {
		return nil, err
	}
	s.commit(gen, func() { s.plans = plans })
	return clonePlans(plans), nil
}

func (s *Store) History(ctx context.Context) (history []models.SubscriptionHistoryEntry, err error) {
	defer s.observe(ctx, "history", time.Now(), &err)
	gen := s.currentGeneration()

	env, err := s.client.Subscriptions.History(ctx)
	if err := decodeData(env, err, "subscription history", MsgHistoryFailed, &history); err != nil {
		return nil, err
	}
	s.commit(gen, func() { s.history = history })
	return append([]models.SubscriptionHistoryEntry(nil), history...), nil
}

// ==========================
// Snapshot / lifecycle
// ==========================

// Snapshot is a deep copy of the store's state for rendering.
type Snapshot struct {
	Loaded       bool
	LoadErr      error
	Profile      *models.Profile
	Jobs         []models.Job
	Query        string
	Subscription *models.Subscription
	Applied      map[int64]models.Application
	Plans        []models.SubscriptionMethod
	History      []models.SubscriptionHistoryEntry
}

// Application returns the viewer's application for jobID, if any.
func (s Snapshot) Application(jobID int64) *models.Application {
	app, ok := s.Applied[jobID]
	if !ok {
		return nil
	}
	return &app
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Loaded:  s.loaded,
		LoadErr: s.loadErr,
		Jobs:    append([]models.Job(nil), s.jobs...),
		Query:   s.query,
		Applied: make(map[int64]models.Application, len(s.applied)),
		Plans:   clonePlans(s.plans),
		History: append([]models.SubscriptionHistoryEntry(nil), s.history...),
	}
	if s.profile != nil {
		p := *s.profile
		snap.Profile = &p
	}
	if s.subscription != nil {
		sub := *s.subscription
		snap.Subscription = &sub
	}
	for k, v := range s.applied {
		snap.Applied[k] = v
	}
	return snap
}

// Clear drops all cached state. Operations started before the call discard their
// results instead of writing into the cleared store.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.loaded = false
	s.loadErr = nil
	s.profile = nil
	s.jobs = nil
	s.query = ""
	s.subscription = nil
	s.applied = make(map[int64]models.Application)
	s.appliedVersion++
	s.plans = nil
	s.history = nil
}

// ==========================
// Internals
// ==========================

func (s *Store) currentGeneration() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// commit applies fn under the write lock unless the store was cleared since gen.
func (s *Store) commit(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.Debug("discarding stale result", map[string]interface{}{
			"startedAt": gen,
			"current":   s.generation,
		})
		return false
	}
	fn()
	return true
}

func (s *Store) acquire(jobID int64) (func(), error) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()

	if _, busy := s.inflight[jobID]; busy {
		return nil, perrors.NewOperationInFlightError(jobID)
	}
	s.inflight[jobID] = struct{}{}
	return func() {
		s.inflightMu.Lock()
		delete(s.inflight, jobID)
		s.inflightMu.Unlock()
	}, nil
}

func (s *Store) currentAppliedVersion() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appliedVersion
}

// setApplied must be called with mu held.
func (s *Store) setApplied(jobID int64, app models.Application) {
	s.applied[jobID] = app
	s.appliedVersion++
}

// installApplied stores a refetched applied set, read when appliedVersion was
// since. If nothing wrote the set in between it replaces the set. Otherwise only
// the jobs listed in touched are taken from fetched, so a concurrent apply or
// cancel on another job is never undone. Must be called with mu held.
func (s *Store) installApplied(since uint64, fetched map[int64]models.Application, touched ...int64) {
	if s.appliedVersion == since {
		s.applied = fetched
		s.appliedVersion++
		return
	}
	s.logger.Debug("applied set changed during refetch, patching", map[string]interface{}{
		"jobIds": touched,
	})
	for _, jobID := range touched {
		if app, ok := fetched[jobID]; ok {
			s.applied[jobID] = app
		} else {
			delete(s.applied, jobID)
		}
	}
	s.appliedVersion++
}

func (s *Store) inlineApplication(env *gateway.Envelope, jobID int64) (models.Application, bool) {
	if !env.HasData() {
		return models.Application{}, false
	}
	result := s.validator.Validate(validation.ResourceApplication, env.Data)
	if !result.Valid {
		s.logger.Debug("apply response carries no usable application", map[string]interface{}{
			"jobId":    jobID,
			"problems": result.Messages(),
		})
		return models.Application{}, false
	}

	var app models.Application
	if err := env.Decode(&app); err != nil || app.JobID != jobID {
		return models.Application{}, false
	}
	return app, true
}

func (s *Store) fetchJobs(ctx context.Context, search string) ([]models.Job, error) {
	var jobs []models.Job
	env, err := s.client.Jobs.List(ctx, search)
	fallback := MsgLoadFailed
	if search != "" {
		fallback = MsgSearchFailed
	}
	if err := decodeData(env, err, "jobs", fallback, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *Store) fetchApplied(ctx context.Context) (map[int64]models.Application, error) {
	var apps []models.Application
	env, err := s.client.Applications.List(ctx)
	if err := decodeData(env, err, "applied jobs", MsgLoadFailed, &apps); err != nil {
		return nil, err
	}

	applied := make(map[int64]models.Application, len(apps))
	for _, app := range apps {
		applied[app.JobID] = app
	}
	return applied, nil
}

// fetchSubscription treats a successful envelope with null data as "no subscription".
func (s *Store) fetchSubscription(ctx context.Context) (*models.Subscription, error) {
	env, err := s.client.Subscriptions.Current(ctx)
	if err := envelopeError(env, err, MsgLoadFailed); err != nil {
		return nil, err
	}
	if !env.HasData() {
		return nil, nil
	}
	var sub models.Subscription
	if err := env.Decode(&sub); err != nil {
		return nil, perrors.NewShapeMismatchError("subscription", err.Error())
	}
	return &sub, nil
}

func (s *Store) observe(ctx context.Context, operation string, start time.Time, errp *error) {
	outcome := metrics.OutcomeSuccess
	if errp != nil && *errp != nil {
		outcome = strings.ToLower(perrors.GetErrorCategory(perrors.CodeOf(*errp)))
	}
	metrics.StoreOperations.WithLabelValues(operation, outcome).Inc()
	s.obs.RecordOperation(ctx, operation, outcome, time.Since(start))
}

func clonePlans(in []models.SubscriptionMethod) []models.SubscriptionMethod {
	return append([]models.SubscriptionMethod(nil), in...)
}
