package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"studyhub-client/internal/domain"
)

const dashboardRows = 5

func newDashboardCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show my latest quizzes and summaries",
		Args:  cobra.NoArgs,
		RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
			var (
				quizzes   []domain.Quiz
				summaries []domain.Summary
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				quizzes, err = c.quizzes.FetchMine(ctx)
				return storeError(c.quizzes.Snapshot().Error, err)
			})
			g.Go(func() error {
				var err error
				summaries, err = c.summaries.FetchMine(ctx)
				return storeError(c.summaries.Snapshot().Error, err)
			})
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Quizzes (%d)\n", len(quizzes))
			printQuizzes(out, head(quizzes, dashboardRows))
			fmt.Fprintf(out, "\nSummaries (%d)\n", len(summaries))
			printSummaries(out, head(summaries, dashboardRows))
			return nil
		}),
	}
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
