package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"carol/internal/board"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}

// shortID keeps listings readable; full ids still work everywhere they are
// accepted.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func attachmentSummary(g board.Greeting) string {
	var parts []string
	if !g.Photo.IsZero() {
		parts = append(parts, "photo")
	}
	if !g.RecordedAudio.IsZero() {
		parts = append(parts, "recording")
	} else if g.ExternalAudioActive && g.ExternalAudioRef != "" {
		parts = append(parts, "audio")
	}
	if g.VideoID != "" {
		parts = append(parts, "video")
	}
	return strings.Join(parts, ", ")
}
