package cli

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/eleven-am/cinelog/internal/catalog"
	"github.com/eleven-am/cinelog/internal/validation"
	"github.com/spf13/cobra"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show rating statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				movies, err := s.movies(ctx)
				if err != nil {
					return err
				}

				p := opts.printer(cmd)
				stats, ok := catalog.ComputeStats(movies)
				if opts.jsonOutput {
					if !ok {
						return p.JSON(catalog.Stats{BestTitles: []string{}, WorstTitles: []string{}})
					}
					return p.JSON(stats)
				}

				p.Println("Movies statistics:")
				if !ok {
					p.Println(noMovies)
					return nil
				}
				p.Printf("- Total movies: %d\n", stats.Count)
				p.Printf("- Average rating: %.1f\n", stats.Mean)
				p.Printf("- Median: %.1f\n", stats.Median)
				p.Println("- Best movie(s):")
				for _, title := range stats.BestTitles {
					p.Printf("  '%s' with rating %s\n", title, formatRating(stats.Best))
				}
				p.Println("- Worst movie(s):")
				for _, title := range stats.WorstTitles {
					p.Printf("  '%s' with rating %s\n", title, formatRating(stats.Worst))
				}
				return nil
			})
		},
	}
}

func newRandomCmd(opts *rootOptions) *cobra.Command {
	var seed uint64

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Suggest a random movie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var r *rand.Rand
			if cmd.Flags().Changed("seed") {
				r = rand.New(rand.NewPCG(seed, seed))
			}

			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				movies, err := s.movies(ctx)
				if err != nil {
					return err
				}

				p := opts.printer(cmd)
				m, ok := catalog.RandomPick(movies, r)
				if !ok {
					if opts.jsonOutput {
						return p.JSON(nil)
					}
					p.Println(noMovies)
					return nil
				}

				if opts.jsonOutput {
					return p.JSON(m)
				}
				p.Println("Random movie suggestion:")
				p.Printf("%s (%d) with a rating of %s\n", m.Title, m.Year, formatRating(m.Rating))
				return nil
			})
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for a reproducible pick")

	return cmd
}

type searchInput struct {
	Term string `flag:"term" validate:"notblank"`
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Find movies by part of the title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := searchInput{Term: titleArg(args)}
			if err := validation.ValidateStruct(&in); err != nil {
				return err
			}

			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				movies, err := s.movies(ctx)
				if err != nil {
					return err
				}

				results := catalog.Search(movies, in.Term)
				p := opts.printer(cmd)
				if opts.jsonOutput {
					return p.JSON(results)
				}
				if len(results) == 0 {
					p.Println("No matching movies found")
					return nil
				}
				p.Printf("Search results for %s:\n", in.Term)
				p.Movies(results, false)
				return nil
			})
		},
	}
}

type sortInput struct {
	By string `flag:"by" validate:"oneof=rating year"`
}

func newSortCmd(opts *rootOptions) *cobra.Command {
	in := &sortInput{}

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "List movies by rating (best first) or by year (oldest first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateStruct(in); err != nil {
				return err
			}

			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				movies, err := s.movies(ctx)
				if err != nil {
					return err
				}

				var sorted []catalog.Movie
				if in.By == "year" {
					sorted = catalog.SortByYear(movies)
				} else {
					sorted = catalog.SortByRating(movies)
				}

				p := opts.printer(cmd)
				if opts.jsonOutput {
					if sorted == nil {
						sorted = []catalog.Movie{}
					}
					return p.JSON(sorted)
				}
				if len(sorted) == 0 {
					p.Println(noMovies)
					return nil
				}
				p.Printf("Movies sorted by %s:\n\n", in.By)
				p.Movies(sorted, true)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.By, "by", "rating", "sort key: rating or year")

	return cmd
}

func newFilterCmd(opts *rootOptions) *cobra.Command {
	var (
		minRating float64
		startYear int
		endYear   int
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "List movies within rating and year bounds",
		Long: `List movies with at least --min-rating, released between --start-year
and --end-year. All bounds are inclusive and optional.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := catalog.FilterOptions{}
			if cmd.Flags().Changed("min-rating") {
				filter.MinRating = &minRating
			}
			if cmd.Flags().Changed("start-year") {
				filter.StartYear = &startYear
			}
			if cmd.Flags().Changed("end-year") {
				filter.EndYear = &endYear
			}
			if filter.StartYear != nil && filter.EndYear != nil && *filter.EndYear < *filter.StartYear {
				return fmt.Errorf("%w: end-year %d is before start-year %d", catalog.ErrInvalidInput, endYear, startYear)
			}

			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				movies, err := s.movies(ctx)
				if err != nil {
					return err
				}

				results := catalog.Filter(movies, filter)
				p := opts.printer(cmd)
				if opts.jsonOutput {
					return p.JSON(results)
				}
				if len(movies) == 0 {
					p.Println(noMovies)
					return nil
				}
				if len(results) == 0 {
					p.Println("No movies match your filters.")
					return nil
				}
				p.Println("Filtered movies:")
				p.Movies(results, false)
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&minRating, "min-rating", 0, "lowest rating to include")
	cmd.Flags().IntVar(&startYear, "start-year", 0, "earliest release year")
	cmd.Flags().IntVar(&endYear, "end-year", 0, "latest release year")

	return cmd
}
