package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/showbase/showbase/internal/application"
	"github.com/showbase/showbase/internal/interface/middleware"
	"github.com/showbase/showbase/pkg/helpers"
	"github.com/showbase/showbase/pkg/response"
	"github.com/showbase/showbase/pkg/validation"
)

// AuthHandler exposes signup, login and the password lifecycle over HTTP.
type AuthHandler struct {
	Service *application.AuthService
	Cookies *helpers.CookieManager
	Logger  *logrus.Logger
	DevMode bool
}

func NewAuthHandler(service *application.AuthService, cookies *helpers.CookieManager, logger *logrus.Logger, devMode bool) *AuthHandler {
	return &AuthHandler{Service: service, Cookies: cookies, Logger: logger, DevMode: devMode}
}

// sendToken writes the standard authenticated response: token in the body
// and mirrored into the httpOnly cookie.
func (h *AuthHandler) sendToken(c *gin.Context, res *application.AuthResult, message string) {
	h.Cookies.SetToken(c, res.Token, res.ExpiresAt)
	response.OK(c, http.StatusOK, gin.H{
		"token": res.Token,
		"user":  viewOf(res.User),
	}, message, nil)
}

// Signup POST /users/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Name            string `json:"name" binding:"required,min=3,max=40"`
		Email           string `json:"email" binding:"required,email"`
		Password        string `json:"password" binding:"required,pwd"`
		PasswordConfirm string `json:"passwordConfirm" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Service.Signup(c.Request.Context(), req.Name, req.Email, req.Password, req.PasswordConfirm)
	if err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	h.sendToken(c, res, "signed up")
}

// Login POST /users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	h.sendToken(c, res, "logged in")
}

// ForgotPassword POST /users/forgotPassword
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	resetURLBase := scheme + "://" + c.Request.Host + "/api/v1/users/resetPassword"

	if err := h.Service.ForgotPassword(c.Request.Context(), req.Email, resetURLBase); err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	// Generic acknowledgement; the token itself travels only by email.
	response.OK[any](c, http.StatusOK, nil, "check your email for the reset token, you have 10 minutes to use it", nil)
}

// ResetPassword PATCH /users/resetPassword/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Password        string `json:"password" binding:"required,pwd"`
		PasswordConfirm string `json:"passwordConfirm" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Service.ResetPassword(c.Request.Context(), c.Param("token"), req.Password, req.PasswordConfirm)
	if err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	h.sendToken(c, res, "password has been reset")
}

// UpdateMyPassword PATCH /users/updateMyPassword (protected)
func (h *AuthHandler) UpdateMyPassword(c *gin.Context) {
	var req struct {
		PasswordCurrent string `json:"passwordCurrent" binding:"required"`
		Password        string `json:"password" binding:"required,pwd"`
		PasswordConfirm string `json:"passwordConfirm" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u := middleware.CurrentUser(c)
	res, err := h.Service.UpdatePassword(c.Request.Context(), u, req.PasswordCurrent, req.Password, req.PasswordConfirm)
	if err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	h.sendToken(c, res, "password updated")
}
