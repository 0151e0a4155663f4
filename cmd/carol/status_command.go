package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"carol/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Carol Daemon", colorize) {
					fmt.Fprintln(out, line)
				}
				runningKind := statusError
				if resp.Running {
					runningKind = statusOK
				}
				fmt.Fprintln(out, renderStatusLine("Daemon", runningKind, fmt.Sprintf("pid %d", resp.PID), colorize))
				fmt.Fprintln(out, renderStatusLine("Greetings", statusInfo, fmt.Sprintf("%d", resp.GreetingCount), colorize))
				session := resp.SessionEmail
				if session == "" {
					session = "not signed in"
				}
				fmt.Fprintln(out, renderStatusLine("Session", statusInfo, session, colorize))
				fmt.Fprintln(out, renderStatusLine("Capture", statusInfo, string(resp.Capture.State), colorize))
				fmt.Fprintln(out, renderStatusLine("Device", boolKind(resp.Capture.DeviceAvailable), yesNo(resp.Capture.DeviceAvailable), colorize))
				fmt.Fprintln(out, renderStatusLine("Hotplug monitor", statusInfo, yesNo(resp.MonitorActive), colorize))
				fmt.Fprintln(out, renderStatusLine("Database", statusInfo, resp.DBPath, colorize))
				fmt.Fprintln(out, renderStatusLine("Socket", statusInfo, resp.SocketPath, colorize))
				fmt.Fprintln(out, renderStatusLine("Lock", statusInfo, resp.LockPath, colorize))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit raw JSON")
	return cmd
}
