package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard-portal/internal/models"
	"jobboard-portal/internal/views"
)

const (
	msgNotAllowed     = "You are not allowed to change application statuses"
	msgUnknownStatus  = "Unknown application status"
	msgRatingRange    = "Rating must be between 1 and 5"
	msgAppNotFound    = "Application not found"
	applicationsRoute = "/applications"
)

type applicationsData struct {
	Rows      []views.ApplicationRow
	CanManage bool
}

func (h *Handler) listApplications(c *gin.Context) {
	_, snap := h.loaded(c)

	p := h.newPage(c, "My Applications").withSnapshot(snap)
	p.Data = applicationsData{
		Rows:      views.ApplicationRows(snap.Jobs, snap.Applied),
		CanManage: snap.Profile != nil && snap.Profile.CanManageApplications(),
	}
	h.render(c, "applications.html", p)
}

func (h *Handler) updateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		h.renderError(c, http.StatusNotFound, msgAppNotFound, msgAppNotFound)
		return
	}
	store, snap := h.loaded(c)
	defer c.Redirect(http.StatusSeeOther, applicationsRoute)

	if snap.Profile == nil || !snap.Profile.CanManageApplications() {
		h.flash(c, msgNotAllowed)
		return
	}
	status := models.ApplicationStatus(strings.TrimSpace(c.PostForm("status")))
	if !status.Valid() {
		h.flash(c, msgUnknownStatus)
		return
	}
	if err := store.UpdateStatus(c.Request.Context(), id, status); err != nil {
		h.fail(c, "update_status", err, map[string]interface{}{
			"applicationId": id,
			"status":        string(status),
		})
	}
}

func (h *Handler) rate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		h.renderError(c, http.StatusNotFound, msgAppNotFound, msgAppNotFound)
		return
	}
	defer c.Redirect(http.StatusSeeOther, applicationsRoute)

	score, err := strconv.Atoi(strings.TrimSpace(c.PostForm("rating")))
	rating := models.Rating{Score: score, Comment: strings.TrimSpace(c.PostForm("comment"))}
	if err != nil || !rating.Valid() {
		h.flash(c, msgRatingRange)
		return
	}
	if err := h.store(c).Rate(c.Request.Context(), id, rating); err != nil {
		h.fail(c, "rate", err, map[string]interface{}{"applicationId": id})
	}
}
