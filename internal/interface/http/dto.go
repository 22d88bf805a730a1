package handlers

import (
	"time"

	"github.com/showbase/showbase/internal/domain/entity"
)

// UserView is the caller-facing shape of a user. Credential fields are
// deliberately absent; nothing hashed or reset-related ever leaves the API.
type UserView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func viewOf(u *entity.User) UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

func viewsOf(users []*entity.User) []UserView {
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, viewOf(u))
	}
	return out
}

// SeriesView is the caller-facing shape of a series record.
type SeriesView struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Slug              string   `json:"slug"`
	Year              int      `json:"year"`
	Network           string   `json:"network"`
	Genres            []string `json:"genres"`
	SeasonsNumber     int      `json:"seasons_number"`
	EpisodesNumber    int      `json:"episodes_number"`
	EpisodesPerSeason float64  `json:"episodes_per_season"`
	IsAiring          bool     `json:"is_airing"`
	Cast              []string `json:"cast,omitempty"`
	Rating            float64  `json:"rating"`
}

func seriesViewOf(s *entity.Series) SeriesView {
	return SeriesView{
		ID:                s.ID,
		Name:              s.Name,
		Slug:              s.Slug,
		Year:              s.Year,
		Network:           s.Network,
		Genres:            s.Genres,
		SeasonsNumber:     s.SeasonsNumber,
		EpisodesNumber:    s.EpisodesNumber,
		EpisodesPerSeason: s.EpisodesPerSeason(),
		IsAiring:          s.IsAiring,
		Cast:              s.Cast,
		Rating:            s.Rating,
	}
}

func seriesViewsOf(list []*entity.Series) []SeriesView {
	out := make([]SeriesView, 0, len(list))
	for _, s := range list {
		out = append(out, seriesViewOf(s))
	}
	return out
}
