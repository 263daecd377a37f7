package catalog

import "strings"

// User is a named partition of the movie table.
type User struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Movie is one catalog entry. Title and Year never change after creation.
type Movie struct {
	Title     string  `db:"title" json:"title"`
	Year      int     `db:"year" json:"year"`
	Rating    float64 `db:"rating" json:"rating"`
	PosterURL *string `db:"poster_url" json:"poster_url,omitempty"`
	Note      *string `db:"note" json:"note,omitempty"`
}

// MovieUpdate is a partial update. Nil fields are left untouched.
type MovieUpdate struct {
	Rating *float64
	Note   *string
}

// Empty reports whether the update carries no fields.
func (u MovieUpdate) Empty() bool {
	return u.Rating == nil && u.Note == nil
}

// FilterOptions bounds a Filter call. Nil bounds do not constrain.
type FilterOptions struct {
	MinRating *float64
	StartYear *int
	EndYear   *int
}

// Stats summarizes the ratings of a movie set.
type Stats struct {
	Count       int      `json:"count"`
	Mean        float64  `json:"mean"`
	Median      float64  `json:"median"`
	Best        float64  `json:"best"`
	Worst       float64  `json:"worst"`
	BestTitles  []string `json:"best_titles"`
	WorstTitles []string `json:"worst_titles"`
}

// Index resolves titles case-insensitively over a movie list.
type Index struct {
	byKey map[string]Movie
}

// NewIndex builds an Index. When two titles fold to the same key the first
// one in list order wins, matching FindTitle.
func NewIndex(movies []Movie) Index {
	idx := Index{byKey: make(map[string]Movie, len(movies))}
	for _, m := range movies {
		key := strings.ToLower(m.Title)
		if _, exists := idx.byKey[key]; !exists {
			idx.byKey[key] = m
		}
	}
	return idx
}

// Get returns the movie whose title matches title case-insensitively.
func (idx Index) Get(title string) (Movie, bool) {
	m, ok := idx.byKey[foldTitle(title)]
	return m, ok
}

func foldTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
