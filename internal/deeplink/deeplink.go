// Package deeplink builds and resolves shareable greeting addresses: a base
// address plus one query parameter carrying a greeting id.
package deeplink

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultParam is the query parameter used when none is configured.
const DefaultParam = "greeting"

// Resolver maps between greeting ids and shareable addresses.
type Resolver struct {
	param string
}

// NewResolver returns a resolver using the given query parameter name.
func NewResolver(param string) Resolver {
	param = strings.TrimSpace(param)
	if param == "" {
		param = DefaultParam
	}
	return Resolver{param: param}
}

// Param returns the query parameter this resolver reads and writes.
func (r Resolver) Param() string {
	return r.param
}

// BuildShareAddress appends the greeting id to the base address, producing a
// canonical deep link. Existing query parameters on the base are preserved;
// a previous value of the share parameter is replaced.
func (r Resolver) BuildShareAddress(base, greetingID string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("parse base address: %w", err)
	}
	query := parsed.Query()
	query.Set(r.param, greetingID)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// ExtractRequestedID parses the greeting id back out of an address. Absence
// yields ok=false, not an error.
func (r Resolver) ExtractRequestedID(address string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(address))
	if err != nil {
		return "", false
	}
	value := parsed.Query().Get(r.param)
	if value == "" {
		return "", false
	}
	return value, true
}
