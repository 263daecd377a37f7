package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/eleven-am/cinelog/internal/catalog"
	"github.com/eleven-am/cinelog/internal/logger"
	"github.com/eleven-am/cinelog/internal/validation"
	"github.com/spf13/cobra"
)

const noMovies = "No movies in the database yet."

// titleArg joins the positional arguments so titles need no quoting.
func titleArg(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the profile's movies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				movies, err := s.movies(ctx)
				if err != nil {
					return err
				}

				p := opts.printer(cmd)
				if opts.jsonOutput {
					return p.JSON(movies)
				}
				if len(movies) == 0 {
					p.Println(noMovies)
					return nil
				}

				p.Printf("%d movies in total\n\n", len(movies))
				p.Movies(movies, false)
				return nil
			})
		},
	}
}

type addInput struct {
	Title  string  `flag:"title" validate:"notblank"`
	Year   int     `flag:"year" validate:"gt=0"`
	Rating float64 `flag:"rating" validate:"gte=0,lte=10"`
	Poster string  `flag:"poster" validate:"omitempty,url"`
	Note   string  `flag:"note"`
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	in := &addInput{}

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a movie",
		Long: `Add a movie to the profile. Titles are matched case-insensitively, so
"heat" is refused when "Heat" is already listed.`,
		Example: `  cinelog add Heat --year 1995 --rating 8.3
  cinelog add "The Thing" --year 1982 --rating 8.2 --note "watch in winter"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Title = titleArg(args)
			if err := validation.ValidateStruct(in); err != nil {
				return err
			}

			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				movies, err := s.movies(ctx)
				if err != nil {
					return err
				}
				if existing, ok := catalog.FindTitle(movies, in.Title); ok {
					return fmt.Errorf("%w: movie %q already exists", catalog.ErrConstraintViolation, existing)
				}

				movie := catalog.Movie{Title: in.Title, Year: in.Year, Rating: in.Rating}
				if in.Poster != "" {
					movie.PosterURL = &in.Poster
				}
				if in.Note != "" {
					movie.Note = &in.Note
				}

				ok, err := s.store.AddMovie(ctx, s.userID, movie)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("movie %q could not be added", movie.Title)
				}
				logger.CLI().Info("Movie added", "user", s.user, "title", movie.Title)

				p := opts.printer(cmd)
				if opts.jsonOutput {
					return p.JSON(movie)
				}
				p.Printf("Movie %s (%d) with rating %s was added\n", movie.Title, movie.Year, formatRating(movie.Rating))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&in.Year, "year", 0, "release year")
	cmd.Flags().Float64Var(&in.Rating, "rating", 0, "rating from 0 to 10")
	cmd.Flags().StringVar(&in.Poster, "poster", "", "poster image URL")
	cmd.Flags().StringVar(&in.Note, "note", "", "free-form note")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("rating")

	return cmd
}

// resolveTitle maps user input to the stored title.
func resolveTitle(movies []catalog.Movie, input string) (string, error) {
	title, ok := catalog.FindTitle(movies, input)
	if !ok {
		return "", fmt.Errorf("%w: %q", catalog.ErrNotFound, input)
	}
	return title, nil
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <title>",
		Aliases: []string{"rm"},
		Short:   "Delete a movie",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := titleArg(args)
			if input == "" {
				return fmt.Errorf("%w: title must not be blank", catalog.ErrInvalidInput)
			}

			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				movies, err := s.movies(ctx)
				if err != nil {
					return err
				}
				title, err := resolveTitle(movies, input)
				if err != nil {
					return err
				}

				ok, err := s.store.DeleteMovie(ctx, s.userID, title)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("movie %q could not be deleted", title)
				}
				logger.CLI().Info("Movie deleted", "user", s.user, "title", title)

				p := opts.printer(cmd)
				if opts.jsonOutput {
					return p.JSON(map[string]interface{}{"title": title, "deleted": true})
				}
				p.Printf("Movie '%s' was deleted\n", title)
				return nil
			})
		},
	}
}

type updateInput struct {
	Rating *float64 `flag:"rating" validate:"omitempty,gte=1,lte=10"`
	Note   *string  `flag:"note"`
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var (
		rating float64
		note   string
	)

	cmd := &cobra.Command{
		Use:   "update <title>",
		Short: "Change a movie's rating and/or note",
		Long: `Change the rating (1 to 10) and/or the note of a movie. Fields that are
not given keep their current value. Title and year cannot be changed.`,
		Example: `  cinelog update heat --rating 9
  cinelog update Heat --note "director's cut"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := titleArg(args)
			if input == "" {
				return fmt.Errorf("%w: title must not be blank", catalog.ErrInvalidInput)
			}

			in := updateInput{}
			if cmd.Flags().Changed("rating") {
				in.Rating = &rating
			}
			if cmd.Flags().Changed("note") {
				in.Note = &note
			}
			if in.Rating == nil && in.Note == nil {
				return fmt.Errorf("%w: nothing to update, pass --rating and/or --note", catalog.ErrInvalidInput)
			}
			if err := validation.ValidateStruct(&in); err != nil {
				return err
			}

			return opts.withSession(cmd, func(ctx context.Context, s *session) error {
				movies, err := s.movies(ctx)
				if err != nil {
					return err
				}
				title, err := resolveTitle(movies, input)
				if err != nil {
					return err
				}

				ok, err := s.store.UpdateMovie(ctx, s.userID, title, catalog.MovieUpdate{Rating: in.Rating, Note: in.Note})
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("movie %q could not be updated", title)
				}
				logger.CLI().Info("Movie updated", "user", s.user, "title", title)

				p := opts.printer(cmd)
				if opts.jsonOutput {
					updated, err := s.movies(ctx)
					if err != nil {
						return err
					}
					m, _ := catalog.NewIndex(updated).Get(title)
					return p.JSON(m)
				}
				if in.Rating != nil {
					p.Printf("'%s' now has a rating %s\n", title, formatRating(*in.Rating))
				}
				if in.Note != nil {
					p.Printf("'%s' note updated\n", title)
				}
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&rating, "rating", 0, "new rating from 1 to 10")
	cmd.Flags().StringVar(&note, "note", "", "new note")

	return cmd
}
