package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"carol/internal/board"
	"carol/internal/clipboard"
	"carol/internal/config"
	"carol/internal/ipc"
	"carol/internal/media"
)

func newComposeCommand(ctx *commandContext) *cobra.Command {
	var message string
	var name string
	var photoPath string
	var audioURL string
	var youtubeURL string
	var useRecording bool

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Post a new greeting to the board",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return errors.New("a message is required (--message)")
			}

			req := ipc.ComposeRequest{
				Author:       name,
				Body:         message,
				UseRecording: useRecording,
				VideoURL:     youtubeURL,
			}
			if trimmed := strings.TrimSpace(audioURL); trimmed != "" {
				req.ExternalAudioRef = trimmed
				req.ExternalAudioActive = true
			}
			if strings.TrimSpace(photoPath) != "" {
				expanded, err := config.ExpandPath(photoPath)
				if err != nil {
					return err
				}
				payload, err := media.FromFile(expanded)
				if err != nil {
					return fmt.Errorf("attach photo: %w", err)
				}
				req.Photo = string(payload)
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Compose(req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Greeting posted: %s\n", resp.Greeting.ID)
				if resp.ShareAddress != "" {
					fmt.Fprintf(out, "Share link: %s\n", resp.ShareAddress)
				}
				if resp.Unpersisted {
					fmt.Fprintf(cmd.ErrOrStderr(),
						"Warning: greeting succeeded locally but may not survive a daemon restart: %s\n",
						resp.Warning)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Greeting text")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Author name (ignored while signed in)")
	cmd.Flags().StringVar(&photoPath, "photo", "", "Path to a photo to attach")
	cmd.Flags().StringVar(&audioURL, "audio-url", "", "External audio URL to attach")
	cmd.Flags().StringVar(&youtubeURL, "youtube", "", "YouTube video address to attach")
	cmd.Flags().BoolVar(&useRecording, "use-recording", false, "Attach the finished microphone recording")
	return cmd
}

func newReplyCommand(ctx *commandContext) *cobra.Command {
	var message string
	var name string

	cmd := &cobra.Command{
		Use:   "reply <greeting-id>",
		Short: "Reply to an existing greeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return errors.New("a message is required (--message)")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.AddReply(ipc.AddReplyRequest{
					GreetingID: args[0],
					Author:     name,
					Body:       message,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reply posted as %s\n", resp.Reply.Author)
				if resp.Unpersisted {
					fmt.Fprintf(cmd.ErrOrStderr(),
						"Warning: reply succeeded locally but may not survive a daemon restart: %s\n",
						resp.Warning)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Reply text")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Author name (ignored while signed in)")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List greetings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.List()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Greetings)
				}
				out := cmd.OutOrStdout()
				if len(resp.Greetings) == 0 {
					fmt.Fprintln(out, "The board is empty")
					return nil
				}
				rows := make([][]string, 0, len(resp.Greetings))
				for _, g := range resp.Greetings {
					rows = append(rows, []string{
						g.ID,
						g.AuthorDisplay,
						truncate(g.Body, 48),
						attachmentSummary(g),
						fmt.Sprintf("%d", len(g.Replies)),
						g.CreatedAt,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Author", "Message", "Attachments", "Replies", "Posted"},
					rows,
					4,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit raw JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <greeting-id|link>",
		Short: "Display one greeting with its replies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Describe(args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Greeting)
				}
				printGreeting(cmd, resp.Greeting)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit raw JSON")
	return cmd
}

func newShareCommand(ctx *commandContext) *cobra.Command {
	var copyToClipboard bool

	cmd := &cobra.Command{
		Use:   "share <greeting-id>",
		Short: "Print the shareable link for a greeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Share(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.Address)
				if copyToClipboard {
					helper := ""
					if cfg := ctx.configValue(); cfg != nil {
						helper = cfg.Share.ClipboardHelper
					}
					if err := clipboard.Copy(cmd.Context(), helper, resp.Address); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not copy to clipboard: %v\n", err)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Also copy the link to the clipboard")
	return cmd
}

func printGreeting(cmd *cobra.Command, g board.Greeting) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader(fmt.Sprintf("Greeting %s", shortID(g.ID)), colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "From:    %s", g.AuthorDisplay)
	if g.AuthorEmail != "" {
		fmt.Fprintf(out, " <%s>", g.AuthorEmail)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Posted:  %s\n", g.CreatedAt)
	fmt.Fprintf(out, "Message: %s\n", g.Body)

	if summary := attachmentSummary(g); summary != "" {
		fmt.Fprintf(out, "Attached: %s\n", summary)
	}
	if audio, ok := g.DisplayAudio(); ok {
		fmt.Fprintf(out, "Audio:   %s\n", truncate(audio, 72))
	}
	if g.VideoID != "" {
		fmt.Fprintf(out, "Video:   https://www.youtube.com/watch?v=%s\n", g.VideoID)
	}

	if len(g.Replies) > 0 {
		fmt.Fprintln(out)
		for _, line := range renderSectionHeader(fmt.Sprintf("Replies (%d)", len(g.Replies)), colorize) {
			fmt.Fprintln(out, line)
		}
		for _, r := range g.Replies {
			fmt.Fprintf(out, "%s%s (%s): %s\n", statusIndent, r.Author, r.CreatedAt, r.Body)
		}
	}
}
