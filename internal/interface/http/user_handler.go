package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/showbase/showbase/internal/application"
	"github.com/showbase/showbase/internal/interface/middleware"
	"github.com/showbase/showbase/pkg/response"
	"github.com/showbase/showbase/pkg/validation"
)

// UserHandler covers self-service profile endpoints and the admin listing.
type UserHandler struct {
	Service *application.UserService
	Logger  *logrus.Logger
	DevMode bool
}

func NewUserHandler(service *application.UserService, logger *logrus.Logger, devMode bool) *UserHandler {
	return &UserHandler{Service: service, Logger: logger, DevMode: devMode}
}

// UpdateMe PATCH /users/updateMe (protected). Password fields in the body
// are rejected; password changes go through /users/updateMyPassword.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		Name            string `json:"name" binding:"omitempty,min=3,max=40"`
		Email           string `json:"email" binding:"omitempty,email"`
		Password        string `json:"password"`
		PasswordConfirm string `json:"passwordConfirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if req.Password != "" || req.PasswordConfirm != "" {
		response.Fail(c, http.StatusBadRequest, "this route cannot change the password, use /users/updateMyPassword instead", nil)
		return
	}

	u := middleware.CurrentUser(c)
	updated, err := h.Service.UpdateMe(c.Request.Context(), u, application.UpdateMeInput{Name: req.Name, Email: req.Email})
	if err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"user": viewOf(updated)}, "profile updated", nil)
}

// UploadAvatar POST /users/updateMe/avatar (protected, multipart)
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	u := middleware.CurrentUser(c)
	url, err := h.Service.UploadAvatar(c.Request.Context(), u, file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar uploaded", nil)
}

// DeleteMe DELETE /users/deleteMe (protected, soft delete)
func (h *UserHandler) DeleteMe(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if err := h.Service.DeleteMe(c.Request.Context(), u.ID); err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	c.Status(http.StatusNoContent)
}

// List GET /users (admin)
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Service.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"users": viewsOf(users)}, "users", gin.H{"results": len(users)})
}

// Get GET /users/:id (admin)
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"user": viewOf(u)}, "user", nil)
}
