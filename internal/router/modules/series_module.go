package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/showbase/showbase/internal/container"
	"github.com/showbase/showbase/internal/domain/entity"
	handlers "github.com/showbase/showbase/internal/interface/http"
	"github.com/showbase/showbase/internal/interface/middleware"
)

// SeriesModule wires the series endpoints. Reads need a login; writes need
// the admin role.
type SeriesModule struct {
	Handler *handlers.SeriesHandler
}

func NewSeriesModule(h *handlers.SeriesHandler) *SeriesModule {
	return &SeriesModule{Handler: h}
}

func (m *SeriesModule) Register(rg *gin.RouterGroup) {
	protect := middleware.Protect(container.GetJWT(), container.GetUserRepo())
	adminOnly := middleware.RequireRole(entity.RoleAdmin)

	series := rg.Group("/series")
	series.Use(protect)
	{
		series.GET("", m.Handler.List)
		series.GET("/top-5", m.Handler.TopFive)
		series.GET("/longest-5", m.Handler.LongestFive)
		series.GET("/series-stats-by-network", m.Handler.StatsByNetwork)
		series.GET("/search", m.Handler.Search)
		series.GET("/:id", m.Handler.Get)

		series.POST("", adminOnly, m.Handler.Create)
		series.PATCH("/:id", adminOnly, m.Handler.Update)
		series.DELETE("/:id", adminOnly, m.Handler.Delete)
	}
}
