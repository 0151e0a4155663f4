package deeplink_test

import (
	"testing"

	"carol/internal/deeplink"
)

func TestBuildAndExtractRoundTrip(t *testing.T) {
	resolver := deeplink.NewResolver("greeting")

	bases := []string{
		"https://carol.local/board",
		"https://carol.local/board?theme=winter",
		"https://cards.example.net/wall/",
		"http://localhost:8080/",
	}
	ids := []string{
		"b2f7a8e4-1c9d-4f3a-9a67-0d5e8c1b2a3f",
		"plain-id",
		"id with spaces",
	}

	for _, base := range bases {
		for _, id := range ids {
			address, err := resolver.BuildShareAddress(base, id)
			if err != nil {
				t.Fatalf("BuildShareAddress(%q, %q) failed: %v", base, id, err)
			}
			got, ok := resolver.ExtractRequestedID(address)
			if !ok || got != id {
				t.Fatalf("round trip failed for base %q id %q: got (%q, %v)", base, id, got, ok)
			}
		}
	}
}

func TestBuildReplacesPreviousParam(t *testing.T) {
	resolver := deeplink.NewResolver("greeting")

	first, err := resolver.BuildShareAddress("https://carol.local/board", "one")
	if err != nil {
		t.Fatalf("BuildShareAddress failed: %v", err)
	}
	second, err := resolver.BuildShareAddress(first, "two")
	if err != nil {
		t.Fatalf("BuildShareAddress failed: %v", err)
	}
	got, ok := resolver.ExtractRequestedID(second)
	if !ok || got != "two" {
		t.Fatalf("expected replacement, got (%q, %v)", got, ok)
	}
}

func TestExtractAbsentParam(t *testing.T) {
	resolver := deeplink.NewResolver("")
	if resolver.Param() != deeplink.DefaultParam {
		t.Fatalf("expected default param, got %q", resolver.Param())
	}
	if _, ok := resolver.ExtractRequestedID("https://carol.local/board"); ok {
		t.Fatal("expected no id on bare address")
	}
	if _, ok := resolver.ExtractRequestedID("::not an address::"); ok {
		t.Fatal("expected no id on malformed address")
	}
}
