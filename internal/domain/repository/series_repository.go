package repository

import (
	"context"

	"github.com/showbase/showbase/internal/domain/entity"
)

// SeriesQuery carries list-endpoint filtering, sorting, field selection and
// pagination, parsed from the request query string.
type SeriesQuery struct {
	// Filters; zero values mean "no constraint".
	Network   string
	Year      int
	YearGTE   int
	YearLTE   int
	RatingGTE float64
	RatingLTE float64
	IsAiring  *bool

	// Sort is a list of column names, each optionally prefixed with "-" for
	// descending order. Unknown columns are rejected by the repository.
	Sort []string

	// Fields restricts the selected columns; empty means all.
	Fields []string

	Page  int
	Limit int
}

// SeriesRepository persists TV-series records.
type SeriesRepository interface {
	Create(ctx context.Context, s *entity.Series) error
	FindByID(ctx context.Context, id string) (*entity.Series, error)
	List(ctx context.Context, q SeriesQuery) ([]*entity.Series, error)
	Update(ctx context.Context, s *entity.Series) error
	Delete(ctx context.Context, id string) error
	StatsByNetwork(ctx context.Context) ([]*entity.NetworkStats, error)
}
