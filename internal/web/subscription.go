package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	perrors "jobboard-portal/internal/common/errors"
	"jobboard-portal/internal/models"
	"jobboard-portal/internal/session"
	"jobboard-portal/internal/views"
)

const subscriptionRoute = "/subscription"

type subscriptionData struct {
	Current    *models.Subscription
	Buttons    []views.PlanButton
	History    []models.SubscriptionHistoryEntry
	PlansErr   string
	HistoryErr string
}

func (h *Handler) showSubscription(c *gin.Context) {
	ctx := c.Request.Context()
	store, _ := h.loaded(c)

	var data subscriptionData
	plans, err := store.Plans(ctx)
	if err != nil {
		data.PlansErr = perrors.UserMessage(err, session.MsgPlansFailed)
		h.errs.HandleOperationError("plans", err, nil)
	}
	history, err := store.History(ctx)
	if err != nil {
		data.HistoryErr = perrors.UserMessage(err, session.MsgHistoryFailed)
		h.errs.HandleOperationError("history", err, nil)
	}

	snap := store.Snapshot()
	data.Current = snap.Subscription
	data.Buttons = views.PlanButtons(plans, snap.Subscription)
	data.History = history

	p := h.newPage(c, "Subscription").withSnapshot(snap)
	p.Data = data
	h.render(c, "subscription.html", p)
}

func (h *Handler) subscribe(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		h.renderError(c, http.StatusNotFound, "Plan not found", "Plan not found")
		return
	}
	if err := h.store(c).Subscribe(c.Request.Context(), id); err != nil {
		h.fail(c, "subscribe", err, map[string]interface{}{"methodId": id})
	}
	c.Redirect(http.StatusSeeOther, subscriptionRoute)
}
