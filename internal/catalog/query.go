package catalog

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"strings"
)

// Derived queries run in memory over a title-ordered list from ListMovies.
// None of them modify their input.

// FindTitle resolves input to the stored title that matches it
// case-insensitively. Surrounding whitespace in input is ignored.
func FindTitle(movies []Movie, input string) (string, bool) {
	key := foldTitle(input)
	for _, m := range movies {
		if strings.ToLower(m.Title) == key {
			return m.Title, true
		}
	}
	return "", false
}

// ComputeStats summarizes ratings. ok is false for an empty list.
func ComputeStats(movies []Movie) (stats Stats, ok bool) {
	if len(movies) == 0 {
		return Stats{}, false
	}

	ratings := make([]float64, len(movies))
	var sum float64
	for i, m := range movies {
		ratings[i] = m.Rating
		sum += m.Rating
	}
	slices.Sort(ratings)

	n := len(ratings)
	stats.Count = n
	stats.Mean = sum / float64(n)
	if n%2 == 1 {
		stats.Median = ratings[n/2]
	} else {
		stats.Median = (ratings[n/2-1] + ratings[n/2]) / 2
	}
	stats.Worst = ratings[0]
	stats.Best = ratings[n-1]

	for _, m := range movies {
		if m.Rating == stats.Best {
			stats.BestTitles = append(stats.BestTitles, m.Title)
		}
		if m.Rating == stats.Worst {
			stats.WorstTitles = append(stats.WorstTitles, m.Title)
		}
	}
	return stats, true
}

// RandomPick returns a uniformly chosen movie. A nil r uses the global
// generator.
func RandomPick(movies []Movie, r *rand.Rand) (Movie, bool) {
	if len(movies) == 0 {
		return Movie{}, false
	}
	if r == nil {
		return movies[rand.IntN(len(movies))], true
	}
	return movies[r.IntN(len(movies))], true
}

// Search returns the movies whose title contains term, ignoring case.
func Search(movies []Movie, term string) []Movie {
	needle := strings.ToLower(term)
	out := []Movie{}
	for _, m := range movies {
		if strings.Contains(strings.ToLower(m.Title), needle) {
			out = append(out, m)
		}
	}
	return out
}

// SortByRating orders by rating, highest first. Ties keep input order.
func SortByRating(movies []Movie) []Movie {
	out := slices.Clone(movies)
	slices.SortStableFunc(out, func(a, b Movie) int {
		return cmp.Compare(b.Rating, a.Rating)
	})
	return out
}

// SortByYear orders by year, oldest first. Ties keep input order.
func SortByYear(movies []Movie) []Movie {
	out := slices.Clone(movies)
	slices.SortStableFunc(out, func(a, b Movie) int {
		return cmp.Compare(a.Year, b.Year)
	})
	return out
}

// Filter keeps the movies inside every set bound. Bounds are inclusive.
func Filter(movies []Movie, opts FilterOptions) []Movie {
	out := []Movie{}
	for _, m := range movies {
		if opts.MinRating != nil && m.Rating < *opts.MinRating {
			continue
		}
		if opts.StartYear != nil && m.Year < *opts.StartYear {
			continue
		}
		if opts.EndYear != nil && m.Year > *opts.EndYear {
			continue
		}
		out = append(out, m)
	}
	return out
}
