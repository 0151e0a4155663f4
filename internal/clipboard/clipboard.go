// Package clipboard copies text to the system clipboard through whichever
// helper binary is installed. Callers treat failure as a warning; the text
// being copied is always surfaced to the user some other way.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNoHelper indicates no clipboard helper binary was found on PATH.
var ErrNoHelper = errors.New("no clipboard helper available")

// helpers lists known clipboard writers in preference order. Wayland first,
// then X11, then macOS.
var helpers = [][]string{
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
	{"xsel", "--clipboard", "--input"},
	{"pbcopy"},
}

// Copy writes text to the clipboard using the preferred helper, or the
// first helper found on PATH. An explicit preferred helper that is missing
// falls through to the detection chain.
func Copy(ctx context.Context, preferred, text string) error {
	if cmd := resolve(preferred); cmd != nil {
		return run(ctx, cmd, text)
	}
	return fmt.Errorf("copy to clipboard: %w", ErrNoHelper)
}

func resolve(preferred string) []string {
	if preferred = strings.TrimSpace(preferred); preferred != "" {
		if _, err := exec.LookPath(preferred); err == nil {
			return []string{preferred}
		}
	}
	for _, candidate := range helpers {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			return candidate
		}
	}
	return nil
}

func run(ctx context.Context, argv []string, text string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard helper %s: %w", argv[0], err)
	}
	return nil
}
