package entity

import "time"

// Series is a TV-series record.
type Series struct {
	ID             string
	Name           string
	Slug           string
	Year           int
	Network        string
	Genres         []string
	SeasonsNumber  int
	EpisodesNumber int
	IsAiring       bool
	Cast           []string
	Rating         float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EpisodesPerSeason is a derived display value.
func (s *Series) EpisodesPerSeason() float64 {
	if s.SeasonsNumber == 0 {
		return 0
	}
	return float64(s.EpisodesNumber) / float64(s.SeasonsNumber)
}

// NetworkStats is the aggregate row returned by the stats-by-network query.
type NetworkStats struct {
	Network         string  `json:"network"`
	SeasonsAverage  float64 `json:"seasons_average"`
	EpisodesAverage float64 `json:"episodes_average"`
	RatingAverage   float64 `json:"rating_average"`
	Total           int     `json:"total"`
}
