package movie

import "strings"

// Genre is one of the closed set of categories a movie can be tagged with.
type Genre string

const (
	GenreAction    Genre = "Action"
	GenreAdventure Genre = "Adventure"
	GenreCrime     Genre = "Crime"
	GenreComedy    Genre = "Comedy"
	GenreDrama     Genre = "Drama"
	GenreFantasy   Genre = "Fantasy"
	GenreHorror    Genre = "Horror"
	GenreThriller  Genre = "Thriller"
	GenreSciFi     Genre = "Sci-Fi"
)

// Genres lists every accepted genre in display order.
func Genres() []Genre {
	return []Genre{
		GenreAction, GenreAdventure, GenreCrime, GenreComedy, GenreDrama,
		GenreFantasy, GenreHorror, GenreThriller, GenreSciFi,
	}
}

// DefaultRate is applied when a new movie is submitted without a rate.
const DefaultRate = 5.0

// Movie is a single catalog entry exposed over the API.
type Movie struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Year     int     `json:"year"`
	Director string  `json:"director"`
	Duration int     `json:"duration"`
	Poster   string  `json:"poster"`
	Genre    []Genre `json:"genre"`
	Rate     float64 `json:"rate"`
}

// Patch holds the fields supplied by a partial update. Nil means "leave unchanged".
type Patch struct {
	Title    *string
	Year     *int
	Director *string
	Duration *int
	Poster   *string
	Genre    []Genre
	Rate     *float64
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Year == nil && p.Director == nil && p.Duration == nil &&
		p.Poster == nil && p.Genre == nil && p.Rate == nil
}

// Apply returns a copy of m with the patch fields merged over it. ID is never touched.
func (m Movie) Apply(p Patch) Movie {
	out := m.clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Year != nil {
		out.Year = *p.Year
	}
	if p.Director != nil {
		out.Director = *p.Director
	}
	if p.Duration != nil {
		out.Duration = *p.Duration
	}
	if p.Poster != nil {
		out.Poster = *p.Poster
	}
	if p.Genre != nil {
		out.Genre = append([]Genre(nil), p.Genre...)
	}
	if p.Rate != nil {
		out.Rate = *p.Rate
	}
	return out
}

// HasGenre matches name against the movie's genres ignoring case.
func (m Movie) HasGenre(name string) bool {
	for _, g := range m.Genre {
		if strings.EqualFold(string(g), name) {
			return true
		}
	}
	return false
}

func (m Movie) clone() Movie {
	out := m
	if m.Genre != nil {
		out.Genre = append([]Genre(nil), m.Genre...)
	}
	return out
}
