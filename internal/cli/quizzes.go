package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"quiz-admin-console/internal/app"
	"quiz-admin-console/internal/config"
	"quiz-admin-console/internal/validation"
)

type quizzesOptions struct {
	email    string
	password string
	query    app.ListQuery
}

// NewQuizzesCmd signs in and prints one grouped page of questions.
func NewQuizzesCmd(configPath *string) *cobra.Command {
	opts := quizzesOptions{}
	cmd := &cobra.Command{
		Use:   "quizzes",
		Short: "Print a grouped page of quiz questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runQuizzes(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", os.Getenv("CONSOLE_EMAIL"), "admin e-mail")
	cmd.Flags().StringVar(&opts.password, "password", os.Getenv("CONSOLE_PASSWORD"), "admin password")
	cmd.Flags().IntVar(&opts.query.Page, "page", 1, "page to fetch")
	cmd.Flags().StringVar(&opts.query.Search, "search", "", "search text")
	cmd.Flags().StringVar(&opts.query.Category, "category", "all", "category id or all")
	return cmd
}

func runQuizzes(ctx context.Context, cfg config.Config, opts quizzesOptions, out io.Writer) error {
	cfg.Redis.Addr = ""
	cfg.Postgres.URL = ""
	s, err := buildStack(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	signIn, err := s.accounts.Login(ctx, validation.LoginForm{Email: opts.email, Password: opts.password})
	if err != nil {
		return err
	}
	defer func() { _ = s.accounts.Logout(ctx, signIn.Session) }()

	view, err := s.quizzes.View(ctx, signIn.Session, opts.query)
	if err != nil {
		return err
	}
	return printView(out, view)
}

func printView(out io.Writer, view app.QuizPageView) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tQUESTIONS")
	for _, stat := range view.Stats {
		fmt.Fprintf(tw, "%s\t%d\n", stat.CategoryName, stat.Count)
	}
	fmt.Fprintln(tw)

	for _, group := range view.Groups {
		fmt.Fprintf(tw, "== %s (%d)\n", group.CategoryName, len(group.Items))
		fmt.Fprintln(tw, "POINTS\tQUESTION\tANSWER\tOPTIONS")
		for _, q := range group.Items {
			fmt.Fprintf(tw, "%g\t%s\t%s\t%s\n", q.Points, q.Question, q.Answer, strings.Join(q.Options, " | "))
		}
		fmt.Fprintln(tw)
	}
	fmt.Fprintf(tw, "%d visible of %d matched. %s\n", view.TotalVisible, view.TotalMatched, view.Pager.Summary)
	return tw.Flush()
}
