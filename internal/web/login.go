package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard-portal/internal/auth"
	"jobboard-portal/internal/models"
)

const msgCredentialsRequired = "Email and password are required"

type loginData struct {
	Email string
}

func (h *Handler) loginPage(c *gin.Context) {
	p := h.newPage(c, "Sign in")
	p.Data = loginData{Email: c.Query("email")}
	h.render(c, "login.html", p)
}

func (h *Handler) login(c *gin.Context) {
	creds := models.Credentials{
		Email:    strings.TrimSpace(c.PostForm("email")),
		Password: c.PostForm("password"),
	}
	if creds.Email == "" || creds.Password == "" {
		h.flash(c, msgCredentialsRequired)
		c.Redirect(http.StatusSeeOther, h.views.DefaultPublic)
		return
	}

	if err := h.auth.Login(c.Request.Context(), auth.SessionID(c), creds); err != nil {
		h.fail(c, "login", err, map[string]interface{}{"email": creds.Email})
		c.Redirect(http.StatusSeeOther, h.views.DefaultPublic+"?email="+url.QueryEscape(creds.Email))
		return
	}
	c.Redirect(http.StatusSeeOther, h.views.DefaultAuthenticated)
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), auth.SessionID(c)); err != nil {
		h.errs.HandleOperationError("logout", err, nil)
	}
	c.Redirect(http.StatusSeeOther, h.views.DefaultPublic)
}
