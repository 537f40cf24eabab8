package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"studyhub-client/internal/app"
	"studyhub-client/internal/domain"
	"studyhub-client/internal/gateway"
)

func newQuizCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Manage and take quizzes",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List my quizzes",
			Args:  cobra.NoArgs,
			RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
				quizzes, err := c.quizzes.FetchMine(cmd.Context())
				if err != nil {
					return storeError(c.quizzes.Snapshot().Error, err)
				}
				printQuizzes(cmd.OutOrStdout(), quizzes)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "show <quiz-id>",
			Short: "Show a quiz's questions",
			Args:  cobra.ExactArgs(1),
			RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
				quiz, err := c.quizzes.FetchByID(cmd.Context(), args[0])
				if err != nil {
					return storeError(c.quizzes.Snapshot().Error, err)
				}
				printQuiz(cmd.OutOrStdout(), quiz)
				return nil
			}),
		},
		newQuizCreateCmd(opts),
		&cobra.Command{
			Use:   "delete <quiz-id>",
			Short: "Delete a quiz",
			Args:  cobra.ExactArgs(1),
			RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
				if err := c.quizzes.Delete(cmd.Context(), args[0]); err != nil {
					return storeError(c.quizzes.Snapshot().Error, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted quiz %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "take <quiz-id>",
			Short: "Answer a quiz interactively and submit it",
			Args:  cobra.ExactArgs(1),
			RunE:  withClient(opts, takeQuiz),
		},
		&cobra.Command{
			Use:   "attempts <quiz-id>",
			Short: "List my attempts of a quiz",
			Args:  cobra.ExactArgs(1),
			RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
				attempts, err := c.quizzes.FetchAttempts(cmd.Context(), args[0])
				if err != nil {
					return storeError(c.quizzes.Snapshot().Error, err)
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ATTEMPT\tWHEN\tMARKS\tCORRECT\tWRONG")
				for _, a := range attempts {
					fmt.Fprintf(w, "%s\t%s\t%d/%d\t%d\t%d\n", a.AttemptID, a.AttemptedAt, a.MarksObtained, a.TotalMarks, a.Stats.CorrectCount, a.Stats.WrongCount)
				}
				return w.Flush()
			}),
		},
		&cobra.Command{
			Use:   "attempt <attempt-id>",
			Short: "Review a graded attempt",
			Args:  cobra.ExactArgs(1),
			RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
				result, err := c.quizzes.FetchAttempt(cmd.Context(), args[0])
				if err != nil {
					return storeError(c.quizzes.Snapshot().Error, err)
				}
				printResult(cmd.OutOrStdout(), result)
				return nil
			}),
		},
	)
	return cmd
}

func newQuizCreateCmd(opts *rootOptions) *cobra.Command {
	form := gateway.QuizForm{}
	var url string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a new quiz",
		Args:  cobra.NoArgs,
		RunE: withClient(opts, func(cmd *cobra.Command, c *client, args []string) error {
			if url != "" {
				form.ContentSource = &gateway.ContentSource{URL: url}
			}
			id, err := c.quizzes.Create(cmd.Context(), form)
			if err != nil {
				return storeError(c.quizzes.Snapshot().Error, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created quiz %s. Take it with: studyhub quiz take %s\n", id, id)
			return nil
		}),
	}
	cmd.Flags().StringVar(&form.QuizSource, "source", gateway.SourceManual, "manual, youtube, article or mistakes")
	cmd.Flags().StringVar(&form.QuizTopic, "topic", "", "quiz topic")
	cmd.Flags().StringVar(&form.Difficulty, "difficulty", "medium", "easy, medium, hard or very_hard")
	cmd.Flags().StringVar(&url, "url", "", "content URL for youtube and article sources")
	cmd.Flags().StringVar(&form.Prompt, "prompt", "", "extra instructions for the generator")
	cmd.Flags().IntVar(&form.NumberOfQuestions, "questions", 5, "number of questions (3-30)")
	return cmd
}

func takeQuiz(cmd *cobra.Command, c *client, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	if _, err := c.quizzes.FetchByID(ctx, args[0]); err != nil {
		return storeError(c.quizzes.Snapshot().Error, err)
	}
	draft, err := app.NewAttemptDraft(c.quizzes)
	if err != nil {
		return err
	}

	quiz := draft.Quiz()
	fmt.Fprintf(out, "%s (%s, %d questions)\n", quiz.Title, quiz.Difficulty, len(quiz.Questions))
	p := newPrompter(cmd.InOrStdin(), out)
	for i, q := range quiz.Questions {
		fmt.Fprintf(out, "\n%d. %s\n", i+1, q.Text)
		for j, choice := range q.Choices {
			fmt.Fprintf(out, "   %d) %s\n", j+1, choice.Text)
		}
		for {
			label := "Answer: "
			if prev, ok := draft.Answer(q.ID); ok {
				label = fmt.Sprintf("Answer [%d]: ", choiceIndex(q, prev)+1)
			}
			reply, err := p.ask(label)
			if err != nil {
				return err
			}
			if reply == "" {
				if _, ok := draft.Answer(q.ID); ok {
					break
				}
				continue
			}
			n, err := strconv.Atoi(reply)
			if err != nil || n < 1 || n > len(q.Choices) {
				fmt.Fprintf(out, "Pick a number between 1 and %d.\n", len(q.Choices))
				continue
			}
			if err := draft.Select(q.ID, q.Choices[n-1].ID); err != nil {
				return err
			}
			break
		}
		fmt.Fprintf(out, "Progress: %d%%\n", draft.Completion())
	}

	result, err := draft.Submit(ctx)
	if errors.Is(err, domain.ErrIncompleteAttempt) {
		return err
	}
	if errors.Is(err, domain.ErrResultPending) {
		fmt.Fprintf(out, "\nSubmitted attempt %s; the result is not available yet.\n", result.AttemptID)
		fmt.Fprintf(out, "Review it later with: studyhub quiz attempt %s\n", result.AttemptID)
		return nil
	}
	if err != nil {
		return storeError(c.quizzes.Snapshot().Error, err)
	}
	fmt.Fprintln(out)
	printResult(out, result)
	return nil
}

func choiceIndex(q domain.Question, choiceID string) int {
	for i, choice := range q.Choices {
		if choice.ID == choiceID {
			return i
		}
	}
	return -1
}

func printQuizzes(w io.Writer, quizzes []domain.Quiz) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDIFFICULTY\tQUESTIONS\tATTEMPTS")
	for _, q := range quizzes {
		count := q.QuestionsCount
		if count == 0 {
			count = len(q.Questions)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", q.ID, q.Title, q.Difficulty, count, q.AttemptCount)
	}
	_ = tw.Flush()
}

func printQuiz(w io.Writer, quiz domain.Quiz) {
	fmt.Fprintf(w, "%s\nDifficulty: %s  Category: %s\n", quiz.Title, quiz.Difficulty, quiz.Category)
	for i, q := range quiz.Questions {
		fmt.Fprintf(w, "\n%d. %s\n", i+1, q.Text)
		for j, choice := range q.Choices {
			fmt.Fprintf(w, "   %d) %s\n", j+1, choice.Text)
		}
	}
}

func printResult(w io.Writer, result domain.QuizResult) {
	s := result.Stats
	fmt.Fprintf(w, "Score: %d/%d  (%d correct, %d wrong of %d)\n", s.MarksObtained, s.TotalMarks, s.CorrectCount, s.WrongCount, s.TotalQuestions)
	for i, q := range result.Questions {
		mark := "✗"
		if q.SelectedChoiceID != "" && q.SelectedChoiceID == q.CorrectChoiceID {
			mark = "✓"
		}
		fmt.Fprintf(w, "\n%s %d. %s\n", mark, i+1, q.Text)
		for _, choice := range q.Choices {
			tag := "  "
			switch choice.ID {
			case q.CorrectChoiceID:
				tag = "* "
			case q.SelectedChoiceID:
				tag = "x "
			}
			fmt.Fprintf(w, "   %s%s\n", tag, choice.Text)
		}
		if q.Explanation != "" {
			fmt.Fprintf(w, "   %s\n", q.Explanation)
		}
	}
	if result.AttemptID != "" {
		fmt.Fprintf(w, "\nAttempt %s\n", result.AttemptID)
	}
}

// storeError prefers the message the store recorded for the user while
// keeping err in the chain for errors.Is.
func storeError(message string, err error) error {
	if err == nil || message == "" {
		return err
	}
	return &userError{msg: message, err: err}
}

type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }

func (e *userError) Unwrap() error { return e.err }
