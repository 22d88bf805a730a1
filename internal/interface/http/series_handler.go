package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/showbase/showbase/internal/application"
	"github.com/showbase/showbase/internal/domain/entity"
	"github.com/showbase/showbase/internal/domain/repository"
	"github.com/showbase/showbase/pkg/response"
	"github.com/showbase/showbase/pkg/validation"
)

// SeriesHandler exposes the TV-series CRUD, alias lists, stats and search.
type SeriesHandler struct {
	Service *application.SeriesService
	Logger  *logrus.Logger
	DevMode bool
}

func NewSeriesHandler(service *application.SeriesService, logger *logrus.Logger, devMode bool) *SeriesHandler {
	return &SeriesHandler{Service: service, Logger: logger, DevMode: devMode}
}

func parseListQuery(c *gin.Context) repository.SeriesQuery {
	q := repository.SeriesQuery{
		Network: c.Query("network"),
	}
	q.Year, _ = strconv.Atoi(c.Query("year"))
	q.YearGTE, _ = strconv.Atoi(c.Query("year_gte"))
	q.YearLTE, _ = strconv.Atoi(c.Query("year_lte"))
	q.RatingGTE, _ = strconv.ParseFloat(c.Query("rating_gte"), 64)
	q.RatingLTE, _ = strconv.ParseFloat(c.Query("rating_lte"), 64)
	if v := c.Query("is_airing"); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			q.IsAiring = &b
		}
	}
	if s := c.Query("sort"); s != "" {
		q.Sort = strings.Split(s, ",")
	}
	if f := c.Query("fields"); f != "" {
		q.Fields = strings.Split(f, ",")
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return q
}

// List GET /series
func (h *SeriesHandler) List(c *gin.Context) {
	h.list(c, parseListQuery(c))
}

// TopFive GET /series/top-5 — highest rated.
func (h *SeriesHandler) TopFive(c *gin.Context) {
	h.list(c, repository.SeriesQuery{Sort: []string{"-rating"}, Limit: 5, Page: 1})
}

// LongestFive GET /series/longest-5 — most episodes.
func (h *SeriesHandler) LongestFive(c *gin.Context) {
	h.list(c, repository.SeriesQuery{Sort: []string{"-episodes_number"}, Limit: 5, Page: 1})
}

func (h *SeriesHandler) list(c *gin.Context, q repository.SeriesQuery) {
	series, err := h.Service.List(c.Request.Context(), q)
	if err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	if len(q.Fields) > 0 {
		views := make([]map[string]any, 0, len(series))
		for _, s := range series {
			views = append(views, projectSeries(seriesViewOf(s), q.Fields))
		}
		response.OK(c, http.StatusOK, gin.H{"series": views}, "series", gin.H{"results": len(series)})
		return
	}
	response.OK(c, http.StatusOK, gin.H{"series": seriesViewsOf(series)}, "series", gin.H{"results": len(series)})
}

// projectSeries narrows a view to the requested fields; unknown names are
// ignored. "id" is always included.
func projectSeries(v SeriesView, fields []string) map[string]any {
	full := map[string]any{
		"id":                  v.ID,
		"name":                v.Name,
		"slug":                v.Slug,
		"year":                v.Year,
		"network":             v.Network,
		"genres":              v.Genres,
		"seasons_number":      v.SeasonsNumber,
		"episodes_number":     v.EpisodesNumber,
		"episodes_per_season": v.EpisodesPerSeason,
		"is_airing":           v.IsAiring,
		"cast":                v.Cast,
		"rating":              v.Rating,
	}
	out := map[string]any{"id": v.ID}
	for _, f := range fields {
		if val, ok := full[strings.TrimSpace(f)]; ok {
			out[strings.TrimSpace(f)] = val
		}
	}
	return out
}

// Get GET /series/:id
func (h *SeriesHandler) Get(c *gin.Context) {
	s, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"series": seriesViewOf(s)}, "series", nil)
}

type seriesCreateRequest struct {
	Name           string   `json:"name" binding:"required,min=2,max=50"`
	Year           int      `json:"year" binding:"required,gte=1928"`
	Network        string   `json:"network" binding:"required,min=2,max=50"`
	Genres         []string `json:"genres" binding:"required,min=1,dive,min=2,max=50"`
	SeasonsNumber  int      `json:"seasons_number" binding:"required,gte=1"`
	EpisodesNumber int      `json:"episodes_number" binding:"required,gte=1"`
	IsAiring       bool     `json:"is_airing"`
	Cast           []string `json:"cast" binding:"omitempty,dive,min=2,max=50"`
	Rating         float64  `json:"rating" binding:"omitempty,gte=1,lte=10"`
}

// Create POST /series (admin)
func (h *SeriesHandler) Create(c *gin.Context) {
	var req seriesCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	s, err := h.Service.Create(c.Request.Context(), &entity.Series{
		Name:           req.Name,
		Year:           req.Year,
		Network:        req.Network,
		Genres:         req.Genres,
		SeasonsNumber:  req.SeasonsNumber,
		EpisodesNumber: req.EpisodesNumber,
		IsAiring:       req.IsAiring,
		Cast:           req.Cast,
		Rating:         req.Rating,
	})
	if err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"series": seriesViewOf(s)}, "series created", nil)
}

type seriesUpdateRequest struct {
	Name           *string  `json:"name" binding:"omitempty,min=2,max=50"`
	Year           *int     `json:"year" binding:"omitempty,gte=1928"`
	Network        *string  `json:"network" binding:"omitempty,min=2,max=50"`
	Genres         []string `json:"genres" binding:"omitempty,min=1,dive,min=2,max=50"`
	SeasonsNumber  *int     `json:"seasons_number" binding:"omitempty,gte=1"`
	EpisodesNumber *int     `json:"episodes_number" binding:"omitempty,gte=1"`
	IsAiring       *bool    `json:"is_airing"`
	Cast           []string `json:"cast" binding:"omitempty,dive,min=2,max=50"`
	Rating         *float64 `json:"rating" binding:"omitempty,gte=1,lte=10"`
}

// Update PATCH /series/:id (admin)
func (h *SeriesHandler) Update(c *gin.Context) {
	var req seriesUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	s, err := h.Service.Update(c.Request.Context(), c.Param("id"), application.SeriesUpdateInput{
		Name:           req.Name,
		Year:           req.Year,
		Network:        req.Network,
		Genres:         req.Genres,
		SeasonsNumber:  req.SeasonsNumber,
		EpisodesNumber: req.EpisodesNumber,
		IsAiring:       req.IsAiring,
		Cast:           req.Cast,
		Rating:         req.Rating,
	})
	if err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"series": seriesViewOf(s)}, "series updated", nil)
}

// Delete DELETE /series/:id (admin)
func (h *SeriesHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	c.Status(http.StatusNoContent)
}

// StatsByNetwork GET /series/series-stats-by-network
func (h *SeriesHandler) StatsByNetwork(c *gin.Context) {
	stats, err := h.Service.StatsByNetwork(c.Request.Context())
	if err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"networks": stats}, "stats by network", gin.H{"total": len(stats)})
}

// Search GET /series/search?q=...
func (h *SeriesHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Fail(c, http.StatusBadRequest, "query parameter q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Service.Search(c.Request.Context(), q, size)
	if err != nil {
		response.FromError(c, err, h.DevMode)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"hits": hits}, "search results", gin.H{"results": len(hits)})
}
