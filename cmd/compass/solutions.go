package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-print"
	"github.com/radarhq/compass"
	"github.com/radarhq/compass/client"
	"github.com/radarhq/compass/workflow"
	"github.com/spf13/cobra"
)

func newSolutionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solutions",
		Short: "Browse and curate catalog entries",
	}
	cmd.AddCommand(
		newSolutionsListCmd(),
		newSolutionsShowCmd(),
		newSolutionsStatusCmd(),
	)
	return cmd
}

func newSolutionsListCmd() *cobra.Command {
	var (
		skip, limit             int
		category, group, review string
		mine                    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, api, err := buildSession()
			if err != nil {
				return err
			}
			mgr.Initialize(cmd.Context())

			var (
				solutions []compass.Solution
				total     int
			)
			if mine {
				solutions, total, err = api.Solutions.My(cmd.Context(), skip, limit)
			} else {
				solutions, total, err = api.Solutions.List(cmd.Context(), client.ListOptions{
					Skip:     skip,
					Limit:    limit,
					Category: category,
					Group:    group,
					Review:   review,
				})
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, sol := range solutions {
				fmt.Fprintf(out, "%-30s %-8s %-10s %s\n", sol.Slug, sol.RecommendStatus, sol.ReviewStatus, sol.Name)
			}
			fmt.Fprintf(out, "%d of %d\n", len(solutions), total)
			return nil
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "records to skip")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().StringVar(&group, "group", "", "filter by group")
	cmd.Flags().StringVar(&review, "review", "", "filter by review status")
	cmd.Flags().BoolVar(&mine, "mine", false, "only entries I created")
	return cmd
}

func newSolutionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := buildSession()
			if err != nil {
				return err
			}
			solution, err := api.Solutions.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), print.MaybePrettyJSON(solution))
			return nil
		},
	}
}

// newSolutionsStatusCmd changes tracked status fields through the
// justification workflow: each change is confirmed with a reason on the
// terminal, then everything commits as one update.
func newSolutionsStatusCmd() *cobra.Command {
	var recommend, review string

	cmd := &cobra.Command{
		Use:   "status <slug>",
		Short: "Change recommendation or review status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if recommend == "" && review == "" {
				return fmt.Errorf("nothing to change: pass --recommend and/or --review")
			}

			mgr, api, err := buildSession()
			if err != nil {
				return err
			}
			mgr.Initialize(cmd.Context())
			if !mgr.IsLoggedIn() {
				return fmt.Errorf("not logged in: run %q first", "compass login")
			}

			solution, err := api.Solutions.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			sess := workflow.NewEditSession(solution, &terminalPrompter{cmd: cmd}, workflow.WithLogger(cliLogger()))

			if recommend != "" {
				if err := propose(cmd.Context(), sess, compass.FieldRecommendStatus, recommend); err != nil {
					return err
				}
			}
			if review != "" {
				if err := propose(cmd.Context(), sess, compass.FieldReviewStatus, review); err != nil {
					return err
				}
			}

			if !sess.HasPending() {
				fmt.Fprintln(cmd.OutOrStdout(), "no changes")
				return nil
			}
			if err := sess.Commit(cmd.Context(), api.Solutions); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", solution.Slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&recommend, "recommend", "", "new recommend status (ADOPT|TRIAL|ASSESS|HOLD|EXIT)")
	cmd.Flags().StringVar(&review, "review", "", "new review status (PENDING|APPROVED|REJECTED)")
	return cmd
}

func propose(ctx context.Context, sess *workflow.EditSession, field compass.TrackedField, value string) error {
	err := sess.ProposeChange(ctx, field, strings.ToUpper(value))
	if workflow.IsCancelled(err) {
		return fmt.Errorf("%s change cancelled", field)
	}
	return err
}

// terminalPrompter collects justifications on stdin. An empty line is
// passed through so the workflow re-prompts; EOF cancels.
type terminalPrompter struct {
	cmd *cobra.Command
}

func (p *terminalPrompter) JustifyChange(ctx context.Context, field compass.TrackedField, oldValue, newValue string) (string, error) {
	fmt.Fprintf(p.cmd.OutOrStdout(), "%s: %s -> %s\njustification (empty to retry, Ctrl-D to cancel): ", field, oldValue, newValue)

	reader := bufio.NewReader(p.cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", workflow.ErrChangeCancelled
	}
	return strings.TrimSpace(line), nil
}
