package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

type userSummary struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Movies int    `json:"movies"`
}

func newUsersCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List user profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			users, err := store.ListUsers(ctx)
			if err != nil {
				return err
			}
			counts, err := store.CountMovies(ctx)
			if err != nil {
				return err
			}

			summaries := make([]userSummary, 0, len(users))
			for _, u := range users {
				summaries = append(summaries, userSummary{ID: u.ID, Name: u.Name, Movies: counts[u.ID]})
			}

			p := opts.printer(cmd)
			if opts.jsonOutput {
				return p.JSON(summaries)
			}
			if len(summaries) == 0 {
				p.Println("No users yet.")
				return nil
			}

			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				rows = append(rows, []string{strconv.FormatInt(s.ID, 10), s.Name, strconv.Itoa(s.Movies)})
			}
			return p.Table([]string{"ID", "NAME", "MOVIES"}, rows)
		},
	}
}
