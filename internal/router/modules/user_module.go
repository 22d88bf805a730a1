package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/showbase/showbase/internal/container"
	"github.com/showbase/showbase/internal/domain/entity"
	handlers "github.com/showbase/showbase/internal/interface/http"
	"github.com/showbase/showbase/internal/interface/middleware"
)

// UserModule wires the auth and user endpoints.
//
// Public:    POST /users/signup, POST /users/login,
//            POST /users/forgotPassword, PATCH /users/resetPassword/:token
// Protected: PATCH /users/updateMyPassword, PATCH /users/updateMe,
//            POST /users/updateMe/avatar, DELETE /users/deleteMe
// Admin:     GET /users, GET /users/:id
type UserModule struct {
	Auth  *handlers.AuthHandler
	Users *handlers.UserHandler
}

func NewUserModule(auth *handlers.AuthHandler, users *handlers.UserHandler) *UserModule {
	return &UserModule{Auth: auth, Users: users}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	signupLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath())
	loginLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIP())
	forgotLimiter := middleware.RateLimit(rdb, 5, time.Minute, middleware.KeyByIPAndPath())
	resetLimiter := middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByIPAndPath())

	rg.POST("/users/signup", signupLimiter, m.Auth.Signup)
	rg.POST("/users/login", loginLimiter, m.Auth.Login)
	rg.POST("/users/forgotPassword", forgotLimiter, m.Auth.ForgotPassword)
	rg.PATCH("/users/resetPassword/:token", resetLimiter, m.Auth.ResetPassword)

	protect := middleware.Protect(container.GetJWT(), container.GetUserRepo())

	auth := rg.Group("/")
	auth.Use(protect)
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUser()))
	{
		auth.PATCH("/users/updateMyPassword", m.Auth.UpdateMyPassword)
		auth.PATCH("/users/updateMe", m.Users.UpdateMe)
		auth.POST("/users/updateMe/avatar", m.Users.UploadAvatar)
		auth.DELETE("/users/deleteMe", m.Users.DeleteMe)
	}

	admin := rg.Group("/")
	admin.Use(protect, middleware.RequireRole(entity.RoleAdmin))
	{
		admin.GET("/users", m.Users.List)
		admin.GET("/users/:id", m.Users.Get)
	}
}
