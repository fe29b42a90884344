package main

import (
	"fmt"

	"github.com/goliatone/go-print"
	"github.com/radarhq/compass"
	"github.com/radarhq/compass/client"
	"github.com/radarhq/compass/workflow"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and amend change history",
	}
	cmd.AddCommand(newHistoryListCmd(), newHistoryJustifyCmd())
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var (
		skip, limit int
		fields      []string
	)

	cmd := &cobra.Command{
		Use:   "list <slug>",
		Short: "List the change history of a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, err := buildSession()
			if err != nil {
				return err
			}

			records, total, err := api.History.ForSolution(cmd.Context(), args[0], client.HistoryQuery{
				Skip:   skip,
				Limit:  limit,
				Fields: fields,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, rec := range records {
				when := ""
				if rec.CreatedAt != nil {
					when = rec.CreatedAt.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(out, "%s  %-16s %-8s %s\n", rec.ID, when, rec.ChangeType, rec.Summary())
				for _, field := range rec.ChangedFields {
					line := fmt.Sprintf("    %s: %v -> %v", field.FieldName, field.OldValue, field.NewValue)
					if field.Justification != "" {
						line += fmt.Sprintf("  (%s)", field.Justification)
					}
					fmt.Fprintln(out, line)
				}
			}
			fmt.Fprintf(out, "%d of %d\n", len(records), total)
			return nil
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "records to skip")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "only records touching these fields")
	return cmd
}

// newHistoryJustifyCmd rewrites the justification stored on a history
// record. Superuser only; the session's cached identity gates it locally
// before the server does.
func newHistoryJustifyCmd() *cobra.Command {
	var field string

	cmd := &cobra.Command{
		Use:   "justify <record-id> <justification>",
		Short: "Amend the justification on a history record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, api, err := buildSession()
			if err != nil {
				return err
			}
			<-mgr.Initialize(cmd.Context())

			rec, err := workflow.EditJustification(cmd.Context(), api.History, mgr.User(), args[0], field, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), print.MaybePrettyJSON(rec))
			return nil
		},
	}

	cmd.Flags().StringVar(&field, "field", string(compass.FieldRecommendStatus), "tracked field to amend")
	return cmd
}
