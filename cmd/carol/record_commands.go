package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"carol/internal/capture"
	"carol/internal/ipc"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Toggle the microphone recording session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RecordToggle()
				if err != nil {
					return err
				}
				printCaptureStatus(cmd, resp.Status)
				return nil
			})
		},
	}

	cmd.AddCommand(newRecordStatusCommand(ctx))
	return cmd
}

func newRecordStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the capture state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.RecordStatus()
				if err != nil {
					return err
				}
				printCaptureStatus(cmd, resp.Status)
				return nil
			})
		},
	}
}

func printCaptureStatus(cmd *cobra.Command, status capture.Status) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	kind := statusInfo
	message := ""
	switch status.State {
	case capture.StateRecording:
		kind = statusWarn
		message = "recording, run `carol record` again to stop"
	case capture.StateReady:
		kind = statusOK
		message = "recording ready, attach it with `carol compose --use-recording`"
	case capture.StateFailed:
		kind = statusError
		message = status.LastError
	}
	fmt.Fprintln(out, renderStatusLine("Capture", kind, string(status.State), colorize))
	if message != "" {
		fmt.Fprintf(out, "%s%s\n", statusIndent, message)
	}
	fmt.Fprintln(out, renderStatusLine("Device", boolKind(status.DeviceAvailable), yesNo(status.DeviceAvailable), colorize))
	fmt.Fprintln(out, renderStatusLine("Payload held", statusInfo, yesNo(status.HasPayload), colorize))
}

func boolKind(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusWarn
}
