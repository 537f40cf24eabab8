package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"studyhub-client/internal/domain"
	"studyhub-client/internal/gateway"
)

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Manage generated summaries",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List my summaries",
			Args:  cobra.NoArgs,
			RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
				summaries, err := c.summaries.FetchMine(cmd.Context())
				if err != nil {
					return storeError(c.summaries.Snapshot().Error, err)
				}
				printSummaries(cmd.OutOrStdout(), summaries)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "show <summary-id>",
			Short: "Show a summary",
			Args:  cobra.ExactArgs(1),
			RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
				summary, err := c.summaries.FetchByID(cmd.Context(), args[0])
				if err != nil {
					return storeError(c.summaries.Snapshot().Error, err)
				}
				printSummary(cmd.OutOrStdout(), summary)
				return nil
			}),
		},
		newSummaryCreateCmd(opts),
		&cobra.Command{
			Use:   "delete <summary-id>",
			Short: "Delete a summary",
			Args:  cobra.ExactArgs(1),
			RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
				if err := c.summaries.Delete(cmd.Context(), args[0]); err != nil {
					return storeError(c.summaries.Snapshot().Error, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted summary %s\n", args[0])
				return nil
			}),
		},
	)
	return cmd
}

func newSummaryCreateCmd(opts *rootOptions) *cobra.Command {
	form := gateway.SummaryForm{}
	var url string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a summary from text or a URL",
		Args:  cobra.NoArgs,
		RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
			if url != "" {
				form.ContentSource = &gateway.ContentSource{URL: url}
			}
			id, err := c.summaries.Create(cmd.Context(), form)
			if err != nil {
				return storeError(c.summaries.Snapshot().Error, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created summary %s. Read it with: studyhub summary show %s\n", id, id)
			return nil
		}),
	}
	cmd.Flags().StringVar(&form.SummarySource, "source", gateway.SourceText, "text, youtube or article")
	cmd.Flags().StringVar(&form.TextContent, "text", "", "text to summarize (text source)")
	cmd.Flags().StringVar(&url, "url", "", "content URL for youtube and article sources")
	cmd.Flags().StringVar(&form.Prompt, "prompt", "", "extra instructions for the generator")
	cmd.Flags().StringVar(&form.Length, "length", "medium", "short, medium or long")
	return cmd
}

func printSummaries(w io.Writer, summaries []domain.Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSOURCE\tCREATED")
	for _, s := range summaries {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, title, s.SourceType, s.CreatedAt)
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, s domain.Summary) {
	if s.Title != "" {
		fmt.Fprintln(w, s.Title)
	}
	fmt.Fprintf(w, "Source: %s", s.SourceType)
	if s.SourceURL != "" {
		fmt.Fprintf(w, " (%s)", s.SourceURL)
	}
	fmt.Fprintf(w, "\n\n%s\n", s.Body())
	if len(s.RelatedQuestions) > 0 {
		fmt.Fprintln(w, "\nRelated questions:")
		for i, rq := range s.RelatedQuestions {
			fmt.Fprintf(w, "%d. %s\n   %s\n", i+1, rq.Question, rq.Answer)
		}
	}
}
