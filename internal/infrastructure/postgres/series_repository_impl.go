package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/showbase/showbase/internal/domain/entity"
	"github.com/showbase/showbase/internal/domain/repository"
	"github.com/showbase/showbase/pkg/apperrors"
)

const seriesColumns = `id, name, slug, year, network, genres, seasons_number,
	episodes_number, is_airing, "cast", rating, created_at, updated_at`

// sortableColumns whitelists what the list endpoint may order or select by.
var sortableColumns = map[string]string{
	"name":            "name",
	"year":            "year",
	"network":         "network",
	"rating":          "rating",
	"seasons_number":  "seasons_number",
	"episodes_number": "episodes_number",
	"created_at":      "created_at",
}

type SeriesRepository struct {
	db DB
}

func NewSeriesRepository(db DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

func scanSeries(row pgx.Row) (*entity.Series, error) {
	s := &entity.Series{}
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.Year, &s.Network, &s.Genres,
		&s.SeasonsNumber, &s.EpisodesNumber, &s.IsAiring, &s.Cast, &s.Rating,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *SeriesRepository) Create(ctx context.Context, s *entity.Series) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO series (name, slug, year, network, genres, seasons_number,
			episodes_number, is_airing, "cast", rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, s.Name, s.Slug, s.Year, s.Network, s.Genres, s.SeasonsNumber,
		s.EpisodesNumber, s.IsAiring, s.Cast, s.Rating)
	return row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *SeriesRepository) FindByID(ctx context.Context, id string) (*entity.Series, error) {
	return scanSeries(r.db.QueryRow(ctx, `
		SELECT `+seriesColumns+`
		FROM series
		WHERE id = $1
	`, id))
}

// List builds the filtered, sorted, paginated query from a whitelist of
// columns. Field selection narrows the JSON output at the handler layer;
// the row is always scanned in full here to keep scanning uniform.
func (r *SeriesRepository) List(ctx context.Context, q repository.SeriesQuery) ([]*entity.Series, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if q.Network != "" {
		where = append(where, "network = "+arg(q.Network))
	}
	if q.Year != 0 {
		where = append(where, "year = "+arg(q.Year))
	}
	if q.YearGTE != 0 {
		where = append(where, "year >= "+arg(q.YearGTE))
	}
	if q.YearLTE != 0 {
		where = append(where, "year <= "+arg(q.YearLTE))
	}
	if q.RatingGTE != 0 {
		where = append(where, "rating >= "+arg(q.RatingGTE))
	}
	if q.RatingLTE != 0 {
		where = append(where, "rating <= "+arg(q.RatingLTE))
	}
	if q.IsAiring != nil {
		where = append(where, "is_airing = "+arg(*q.IsAiring))
	}

	sql := "SELECT " + seriesColumns + " FROM series"
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}

	order, err := orderClause(q.Sort)
	if err != nil {
		return nil, err
	}
	sql += order

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	sql += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, (page-1)*limit)

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Series
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func orderClause(sort []string) (string, error) {
	if len(sort) == 0 {
		return " ORDER BY created_at DESC", nil
	}
	var parts []string
	for _, s := range sort {
		dir := " ASC"
		name := s
		if strings.HasPrefix(s, "-") {
			dir = " DESC"
			name = s[1:]
		}
		col, ok := sortableColumns[name]
		if !ok {
			return "", apperrors.Newf(apperrors.Validation, "cannot sort by %q", name)
		}
		parts = append(parts, col+dir)
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

func (r *SeriesRepository) Update(ctx context.Context, s *entity.Series) error {
	res, err := r.db.Exec(ctx, `
		UPDATE series
		SET name = $1, slug = $2, year = $3, network = $4, genres = $5,
		    seasons_number = $6, episodes_number = $7, is_airing = $8,
		    "cast" = $9, rating = $10, updated_at = now()
		WHERE id = $11
	`, s.Name, s.Slug, s.Year, s.Network, s.Genres, s.SeasonsNumber,
		s.EpisodesNumber, s.IsAiring, s.Cast, s.Rating, s.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SeriesRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM series WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SeriesRepository) StatsByNetwork(ctx context.Context) ([]*entity.NetworkStats, error) {
	rows, err := r.db.Query(ctx, `
		SELECT network,
		       AVG(seasons_number)::float8,
		       AVG(episodes_number)::float8,
		       AVG(rating)::float8,
		       COUNT(*)::int
		FROM series
		GROUP BY network
		ORDER BY AVG(rating) DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.NetworkStats
	for rows.Next() {
		st := &entity.NetworkStats{}
		if err := rows.Scan(&st.Network, &st.SeasonsAverage, &st.EpisodesAverage, &st.RatingAverage, &st.Total); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

var _ repository.SeriesRepository = (*SeriesRepository)(nil)
