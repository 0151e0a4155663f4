package clipboard_test

import (
	"context"
	"errors"
	"testing"

	"carol/internal/clipboard"
	"carol/internal/testsupport"
)

func TestCopyWithPreferredHelper(t *testing.T) {
	testsupport.NewConfig(t, testsupport.WithStubbedBinaries("my-copier"))

	if err := clipboard.Copy(context.Background(), "my-copier", "https://carol.test/board?greeting=1"); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
}

func TestCopyFallsBackToDetection(t *testing.T) {
	testsupport.NewConfig(t, testsupport.WithStubbedBinaries("wl-copy"))

	// The preferred helper is missing; detection finds the stub.
	if err := clipboard.Copy(context.Background(), "not-installed-copier", "text"); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
}

func TestCopyWithoutAnyHelper(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	err := clipboard.Copy(context.Background(), "", "text")
	if !errors.Is(err, clipboard.ErrNoHelper) {
		t.Fatalf("expected ErrNoHelper, got %v", err)
	}
}
