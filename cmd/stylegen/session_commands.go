package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stylegen/internal/batch"
	"stylegen/internal/model"
	"stylegen/internal/notifications"
	"stylegen/internal/preflight"
	"stylegen/internal/selection"
)

var errNoStoredBatch = errors.New("no batch found; run `stylegen run <images>` first")

// resumeApp opens the app and restores the stored batch.
func resumeApp(cmdCtx context.Context, ctx *commandContext) (*app, error) {
	a, err := ctx.openApp(cmdCtx, false, false)
	if err != nil {
		return nil, err
	}
	ok, err := a.session.Resume(cmdCtx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if !ok {
		_ = a.Close()
		return nil, errNoStoredBatch
	}
	return a, nil
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored batch and readiness checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, renderPreflight(preflight.RunAll(cmd.Context(), cfg)))

			a, err := resumeApp(cmd.Context(), ctx)
			if errors.Is(err, errNoStoredBatch) {
				fmt.Fprintln(out, "No stored batch")
				return nil
			}
			if err != nil {
				return err
			}
			defer a.Close()

			outcomes := a.session.Outcomes()
			summary := batch.Summarize(outcomes)
			rows := [][]string{
				{"Batch", a.session.BatchID()},
				{"Images", strconv.Itoa(summary.Total)},
				{"Succeeded", strconv.Itoa(summary.Succeeded)},
				{"Failed", strconv.Itoa(summary.Failed)},
				{"Confirmed", yesNo(a.session.Finalized())},
			}
			fmt.Fprintln(out, renderFields(rows))
			return nil
		},
	}
}

func newResultsCommand(ctx *commandContext) *cobra.Command {
	var imageFlag string

	cmd := &cobra.Command{
		Use:   "results",
		Short: "List results and template choices",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resumeApp(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()

			outcomes := a.session.Outcomes()
			if name := strings.TrimSpace(imageFlag); name != "" {
				state, choices, err := a.session.Selection(name)
				if err != nil {
					return err
				}
				var current model.Template
				for _, o := range outcomes {
					if o.Image.Name == name && o.OK() {
						current = o.Result.EffectiveTemplate()
					}
				}
				fmt.Fprintf(out, "%s (%s)\n", name, state)
				fmt.Fprintln(out, renderChoices(choices, current))
				return nil
			}

			fmt.Fprintln(out, renderOutcomes(outcomes))
			if !a.session.Finalized() {
				fmt.Fprintln(out, "Use `stylegen results --image <name>` to see alternatives.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&imageFlag, "image", "", "Show template choices for one image")
	return cmd
}

func renderChoices(choices []model.Template, current model.Template) string {
	rows := make([][]string, 0, len(choices))
	for i, t := range choices {
		marker := ""
		if t.Equal(current) {
			marker = "*"
		}
		label := strconv.Itoa(i)
		if i == 0 {
			label += " (AI)"
		}
		rows = append(rows, []string{marker, label, t.Category, t.Title, t.Menu, t.Hashtag})
	}
	cols := columns("", "Index", "Category", "Title", "Menu", "Hashtag")
	cols[1].right = true
	return renderTable(cols, rows)
}

func newChooseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "choose <image> <index>",
		Short: "Override the template for one image (index 0 is the AI choice)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(strings.TrimSpace(args[1]))
			if err != nil {
				return fmt.Errorf("invalid index %q", args[1])
			}
			a, err := resumeApp(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.session.ChooseTemplate(cmd.Context(), args[0], index); err != nil {
				if errors.Is(err, selection.ErrFinalized) {
					return fmt.Errorf("%w; start a new batch to change templates", err)
				}
				return err
			}
			_, choices, err := a.session.Selection(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], choices[index].Title)
			return nil
		},
	}
}

func newConfirmCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm",
		Short: "Finalize the template choices of the stored batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resumeApp(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.session.ConfirmSelections(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Confirmed %d result(s)\n", len(results))
			a.publish(cmd.Context(), notifications.EventSelectionsConfirmed, notifications.Payload{"count": len(results)})
			return nil
		},
	}
}
