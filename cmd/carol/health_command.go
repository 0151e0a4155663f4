package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"carol/internal/ipc"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Run storage diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Health()
				if err != nil {
					return err
				}
				health := resp.Health
				if asJSON {
					return writeJSON(cmd, health)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Storage Health", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Database", statusInfo, health.DBPath, colorize))
				fmt.Fprintln(out, renderStatusLine("Exists", boolKind(health.DatabaseExists), yesNo(health.DatabaseExists), colorize))
				fmt.Fprintln(out, renderStatusLine("Readable", boolKind(health.DatabaseReadable), yesNo(health.DatabaseReadable), colorize))
				integrityKind := statusError
				if health.IntegrityCheck {
					integrityKind = statusOK
				}
				fmt.Fprintln(out, renderStatusLine("Integrity", integrityKind, yesNo(health.IntegrityCheck), colorize))
				fmt.Fprintln(out, renderStatusLine("Entries", statusInfo, fmt.Sprintf("%d", health.TotalEntries), colorize))
				fmt.Fprintln(out, renderStatusLine("Free space", statusInfo, formatBytes(health.FreeBytes), colorize))
				if health.Error != "" {
					fmt.Fprintln(out, renderStatusLine("Last error", statusError, health.Error, colorize))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit raw JSON")
	return cmd
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
