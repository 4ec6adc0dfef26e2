package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"stylegen/internal/export"
	"stylegen/internal/notifications"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		formats   []string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored results as documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resumeApp(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()

			if len(formats) == 0 {
				formats = []string{a.cfg.Export.TableFormat, a.cfg.Export.TextFormat}
			}
			dir := strings.TrimSpace(outputDir)
			if dir == "" {
				dir = a.cfg.Paths.OutputDir
			}
			if !a.session.Finalized() {
				fmt.Fprintln(out, "Selections are not confirmed; exporting current choices.")
			}

			for _, format := range formats {
				doc, err := a.session.ExportDocument(format)
				if err != nil {
					return err
				}
				path, err := export.Save(dir, doc)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Wrote %s (%d rows", path, doc.Rows)
				if doc.Excluded > 0 {
					fmt.Fprintf(out, ", %d failed image(s) excluded", doc.Excluded)
				}
				fmt.Fprintln(out, ")")
				a.publish(cmd.Context(), notifications.EventExportWritten, notifications.Payload{
					"file": filepath.Base(path),
					"rows": doc.Rows,
				})
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&formats, "format", "f", nil,
		"Document formats ("+strings.Join(export.Formats(), ", ")+"); default from config")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default from config)")
	return cmd
}
