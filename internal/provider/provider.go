// Package provider defines the narrow text-in/text-out contract every
// capability adapter (chat, search, trends, image generation, image
// analysis) implements for the dispatcher.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Capability names are also the prefix of user-visible failure messages.
const (
	CapabilityChat            = "Chat"
	CapabilityRealtimeSearch  = "Realtime search"
	CapabilityTrendAnalysis   = "Trend analysis"
	CapabilityImageGeneration = "Image generation"
	CapabilityImageAnalysis   = "Image analysis"
)

var ErrNotConfigured = errors.New("provider not configured")

// Provider may be slow, may fail, and returns plain text.
type Provider interface {
	Invoke(ctx context.Context, argument string) (string, error)
}

// Func adapts a function to Provider.
type Func func(ctx context.Context, argument string) (string, error)

func (f Func) Invoke(ctx context.Context, argument string) (string, error) { return f(ctx, argument) }

// Error is a transport, quota or malformed-response failure of one capability.
type Error struct {
	Capability string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Capability, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap tags err with capability unless it already carries one.
func Wrap(capability string, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{Capability: capability, Err: err}
}

// Cause strips the capability wrapper so messages don't repeat the capability name.
func Cause(err error) error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
