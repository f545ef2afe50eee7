package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	perrors "jobboard-portal/internal/common/errors"
	"jobboard-portal/internal/session"
	"jobboard-portal/internal/views"
)

const (
	msgJobClosed      = "This job is no longer accepting applications"
	msgAlreadyApplied = "You have already applied to this job"
	msgEmptyComment   = "Comment cannot be empty"
	msgJobNotFound    = "Job not found"
)

type jobsData struct {
	Query string
	Rows  []views.JobRow
}

type jobData struct {
	Row      views.JobRow
	Comments []views.CommentRow
}

func (h *Handler) listJobs(c *gin.Context) {
	ctx := c.Request.Context()
	store := h.store(c)
	_ = store.EnsureLoaded(ctx)

	p := h.newPage(c, "Jobs")
	query := strings.TrimSpace(c.Query("search"))
	if query != store.Snapshot().Query {
		if err := store.Search(ctx, query); err != nil {
			msg := h.errs.HandleOperationError("search", err, map[string]interface{}{"query": query})
			if p.Flash == "" {
				p.Flash = msg
			}
		}
	}

	snap := store.Snapshot()
	p.withSnapshot(snap)
	// snap.Query is the query the listed rows belong to, which differs from the
	// request when the search failed.
	p.Data = jobsData{Query: snap.Query, Rows: views.JobRows(snap.Jobs, snap.Applied)}
	h.render(c, "jobs.html", p)
}

func (h *Handler) showJob(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		h.renderError(c, http.StatusNotFound, msgJobNotFound, msgJobNotFound)
		return
	}
	ctx := c.Request.Context()
	store := h.store(c)
	_ = store.EnsureLoaded(ctx)

	job, err := store.Job(ctx, id)
	if err != nil {
		msg := h.errs.HandleOperationError("job", err, map[string]interface{}{"jobId": id})
		status := http.StatusBadGateway
		if perrors.IsCode(err, perrors.ErrCodeBackendRejected) {
			status = http.StatusNotFound
		}
		h.renderError(c, status, msgJobNotFound, msg)
		return
	}
	comments := store.GetComments(ctx, id)

	snap := store.Snapshot()
	var viewerID int64
	if snap.Profile != nil {
		viewerID = snap.Profile.ID
	}
	app := snap.Application(id)

	p := h.newPage(c, job.Title).withSnapshot(snap)
	p.Data = jobData{
		Row:      views.JobRow{Job: job, Application: app, Display: views.JobDisplay(job, app)},
		Comments: views.CommentRows(comments, viewerID),
	}
	h.render(c, "job.html", p)
}

// apply checks the preconditions the store leaves to its callers before
// submitting: the job must be open and the viewer must not have applied yet.
func (h *Handler) apply(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		h.renderError(c, http.StatusNotFound, msgJobNotFound, msgJobNotFound)
		return
	}
	ctx := c.Request.Context()
	store := h.store(c)
	_ = store.EnsureLoaded(ctx)
	defer redirectBack(c, jobPath(id))

	job, err := store.Job(ctx, id)
	if err != nil {
		h.fail(c, "apply", err, map[string]interface{}{"jobId": id})
		return
	}
	switch {
	case !job.AcceptsApplications():
		h.flash(c, msgJobClosed)
	case store.Snapshot().Application(id) != nil:
		h.flash(c, msgAlreadyApplied)
	default:
		if err := store.Apply(ctx, id); err != nil {
			h.fail(c, "apply", err, map[string]interface{}{"jobId": id})
		}
	}
}

func (h *Handler) cancel(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		h.renderError(c, http.StatusNotFound, msgJobNotFound, msgJobNotFound)
		return
	}
	if err := h.store(c).Cancel(c.Request.Context(), id); err != nil {
		h.fail(c, "cancel", err, map[string]interface{}{"jobId": id})
	}
	redirectBack(c, jobPath(id))
}

func (h *Handler) createComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		h.renderError(c, http.StatusNotFound, msgJobNotFound, msgJobNotFound)
		return
	}
	text := strings.TrimSpace(c.PostForm("text"))
	if text == "" {
		h.flash(c, msgEmptyComment)
	} else if _, err := h.store(c).CreateComment(c.Request.Context(), id, text); err != nil {
		h.fail(c, "create_comment", err, map[string]interface{}{"jobId": id})
	}
	c.Redirect(http.StatusSeeOther, jobPath(id))
}

func (h *Handler) deleteComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	commentID, ok2 := idParam(c, "commentID")
	if !ok || !ok2 {
		h.renderError(c, http.StatusNotFound, msgJobNotFound, msgJobNotFound)
		return
	}
	if _, err := h.store(c).DeleteComment(c.Request.Context(), commentID); err != nil {
		h.fail(c, "delete_comment", err, map[string]interface{}{
			"jobId":     id,
			"commentId": commentID,
		})
	}
	c.Redirect(http.StatusSeeOther, jobPath(id))
}

// loaded is the snapshot of a store after making sure it has loaded once.
func (h *Handler) loaded(c *gin.Context) (*session.Store, session.Snapshot) {
	store := h.store(c)
	_ = store.EnsureLoaded(c.Request.Context())
	return store, store.Snapshot()
}
