package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard-portal/internal/auth"
	perrors "jobboard-portal/internal/common/errors"
	"jobboard-portal/internal/models"
	"jobboard-portal/internal/session"
	"jobboard-portal/pkg/registry"
)

// page is the data every template receives. Data holds the page-specific part.
type page struct {
	Title    string
	SignedIn bool
	Profile  *models.Profile
	Nav      []registry.View
	Flash    string
	LoadErr  string
	RetryURL string
	Data     interface{}
}

// newPage pops the pending flash banner and fills the chrome shared by all pages.
func (h *Handler) newPage(c *gin.Context, title string) *page {
	p := &page{
		Title:    title,
		SignedIn: auth.Token(c) != "",
		RetryURL: c.Request.URL.RequestURI(),
	}
	if p.SignedIn {
		p.Nav = h.views.NavViews()
		if store, ok := h.stores.Get(auth.SessionID(c)); ok {
			p.Profile = store.Snapshot().Profile
		}
	}

	flash, err := h.tokens.PopFlash(c.Request.Context(), auth.SessionID(c))
	if err != nil {
		h.logger.Warn("flash unavailable", map[string]interface{}{"error": err.Error()})
	}
	p.Flash = flash
	return p
}

// withSnapshot copies what the chrome needs from snap and surfaces a failed load.
func (p *page) withSnapshot(snap session.Snapshot) *page {
	if snap.Profile != nil {
		p.Profile = snap.Profile
	}
	if snap.LoadErr != nil {
		p.LoadErr = perrors.UserMessage(snap.LoadErr, session.MsgLoadFailed)
	}
	return p
}

func (h *Handler) render(c *gin.Context, name string, p *page) {
	c.HTML(http.StatusOK, name, p)
}

func (h *Handler) renderError(c *gin.Context, status int, title, message string) {
	p := h.newPage(c, title)
	p.Data = message
	c.HTML(status, "error.html", p)
}

// store returns the cache of the request's browser session.
func (h *Handler) store(c *gin.Context) *session.Store {
	return h.stores.GetOrCreate(auth.SessionID(c))
}

// flash queues a banner for the next rendered page.
func (h *Handler) flash(c *gin.Context, message string) {
	if message == "" {
		return
	}
	if err := h.tokens.SetFlash(c.Request.Context(), auth.SessionID(c), message); err != nil {
		h.logger.Warn("flash not stored", map[string]interface{}{
			"error":   err.Error(),
			"message": message,
		})
	}
}

// fail logs a failed operation and queues its user message as a banner.
func (h *Handler) fail(c *gin.Context, operation string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["path"] = c.Request.URL.Path
	h.flash(c, h.errs.HandleOperationError(operation, err, fields))
}

// redirectBack sends the browser to the page it came from when that page is on
// this site, otherwise to fallback.
func redirectBack(c *gin.Context, fallback string) {
	c.Redirect(http.StatusSeeOther, safeReturn(c.Request.Referer(), c.Request.Host, fallback))
}

func safeReturn(referer, host, fallback string) string {
	if referer == "" {
		return fallback
	}
	u, err := url.Parse(referer)
	if err != nil || (u.Host != "" && u.Host != host) {
		return fallback
	}
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

// idParam parses a positive numeric route parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func jobPath(id int64) string {
	return "/jobs/" + strconv.FormatInt(id, 10)
}
