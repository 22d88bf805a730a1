package application

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/showbase/showbase/internal/domain/entity"
	"github.com/showbase/showbase/internal/domain/repository"
	"github.com/showbase/showbase/pkg/apperrors"
)

// SeriesService is the CRUD layer over series records, plus the
// Elasticsearch index behind /series/search.
type SeriesService struct {
	Repo    repository.SeriesRepository
	ES      *elasticsearch.Client
	ESIndex string
	Logger  *logrus.Logger
}

func NewSeriesService(repo repository.SeriesRepository, es *elasticsearch.Client, esIndex string, logger *logrus.Logger) *SeriesService {
	return &SeriesService{Repo: repo, ES: es, ESIndex: esIndex, Logger: logger}
}

var slugCleanup = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	s := slugCleanup.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

func (s *SeriesService) Create(ctx context.Context, sr *entity.Series) (*entity.Series, error) {
	sr.Slug = slugify(sr.Name)
	if sr.Rating == 0 {
		sr.Rating = 8
	}
	if err := s.Repo.Create(ctx, sr); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "could not create series", err)
	}
	s.index(ctx, sr)
	return sr, nil
}

func (s *SeriesService) Get(ctx context.Context, id string) (*entity.Series, error) {
	sr, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "cannot find series with this id")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "could not load series", err)
	}
	return sr, nil
}

func (s *SeriesService) List(ctx context.Context, q repository.SeriesQuery) ([]*entity.Series, error) {
	out, err := s.Repo.List(ctx, q)
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.Internal, "could not list series", err)
	}
	return out, nil
}

// UpdateInput holds partial series mutations; nil pointers leave fields as
// they are.
type SeriesUpdateInput struct {
	Name           *string
	Year           *int
	Network        *string
	Genres         []string
	SeasonsNumber  *int
	EpisodesNumber *int
	IsAiring       *bool
	Cast           []string
	Rating         *float64
}

func (s *SeriesService) Update(ctx context.Context, id string, in SeriesUpdateInput) (*entity.Series, error) {
	sr, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		sr.Name = *in.Name
		sr.Slug = slugify(sr.Name)
	}
	if in.Year != nil {
		sr.Year = *in.Year
	}
	if in.Network != nil {
		sr.Network = *in.Network
	}
	if in.Genres != nil {
		sr.Genres = in.Genres
	}
	if in.SeasonsNumber != nil {
		sr.SeasonsNumber = *in.SeasonsNumber
	}
	if in.EpisodesNumber != nil {
		sr.EpisodesNumber = *in.EpisodesNumber
	}
	if in.IsAiring != nil {
		sr.IsAiring = *in.IsAiring
	}
	if in.Cast != nil {
		sr.Cast = in.Cast
	}
	if in.Rating != nil {
		sr.Rating = *in.Rating
	}
	if err := s.Repo.Update(ctx, sr); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "cannot find series with this id")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "could not update series", err)
	}
	s.index(ctx, sr)
	return sr, nil
}

func (s *SeriesService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.New(apperrors.NotFound, "cannot find series with this id")
		}
		return apperrors.Wrap(apperrors.Internal, "could not delete series", err)
	}
	s.deleteIndex(ctx, id)
	return nil
}

func (s *SeriesService) StatsByNetwork(ctx context.Context) ([]*entity.NetworkStats, error) {
	stats, err := s.Repo.StatsByNetwork(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "could not aggregate stats", err)
	}
	return stats, nil
}

// index mirrors a series document into Elasticsearch, best effort.
func (s *SeriesService) index(ctx context.Context, sr *entity.Series) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":       sr.ID,
		"name":     sr.Name,
		"network":  sr.Network,
		"genres":   sr.Genres,
		"cast":     sr.Cast,
		"year":     sr.Year,
		"rating":   sr.Rating,
		"isAiring": sr.IsAiring,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: sr.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("series_id", sr.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("series_id", sr.ID).Warn("es index response error")
	}
}

func (s *SeriesService) deleteIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("series_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search runs a multi_match query over name, network, genres and cast.
func (s *SeriesService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "network", "genres", "cast"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "search failed", err)
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "search decode failed", err)
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
