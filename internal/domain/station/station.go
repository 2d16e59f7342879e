// Package station maps outcome positions to station labels.
package station

import (
	"errors"
	"fmt"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ErrOverflow is returned by the fail policy when more than 26 labels are needed.
var ErrOverflow = errors.New("station labels exhausted")

// Policy decides what happens past label Z.
type Policy string

const (
	// PolicyExtend continues with AA, AB, ... like spreadsheet columns.
	PolicyExtend Policy = "extend"
	// PolicyFail rejects indexes past Z.
	PolicyFail Policy = "fail"
)

// ParsePolicy parses a policy name. Empty means extend.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyExtend:
		return PolicyExtend, nil
	case PolicyFail:
		return PolicyFail, nil
	}
	return "", fmt.Errorf("unknown station overflow policy %q", s)
}

// Allocator labels outcomes by their index within a tick.
type Allocator struct {
	Policy Policy
}

// Label returns the station for the i-th outcome, starting at A for 0.
func (a Allocator) Label(i int) (string, error) {
	if i < 0 {
		return "", fmt.Errorf("negative station index %d", i)
	}
	if i < len(alphabet) {
		return alphabet[i : i+1], nil
	}
	if a.Policy == PolicyFail {
		return "", fmt.Errorf("index %d: %w", i, ErrOverflow)
	}

	var b []byte
	for n := i + 1; n > 0; n = (n - 1) / len(alphabet) {
		b = append([]byte{alphabet[(n-1)%len(alphabet)]}, b...)
	}
	return string(b), nil
}

// Check reports whether n outcomes can be labelled under the policy.
func (a Allocator) Check(n int) error {
	if n > len(alphabet) && a.Policy == PolicyFail {
		return fmt.Errorf("%d outcomes: %w", n, ErrOverflow)
	}
	return nil
}
