package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	base := errors.New("quota exceeded")
	err := Wrap(CapabilityChat, base)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, CapabilityChat, pe.Capability)
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "Chat: quota exceeded", err.Error())
	assert.Equal(t, base, Cause(err))

	// Already-tagged errors keep their original capability.
	assert.Same(t, err, Wrap(CapabilityTrendAnalysis, err))
	assert.Nil(t, Wrap(CapabilityChat, nil))
}

func TestFunc(t *testing.T) {
	var p Provider = Func(func(_ context.Context, arg string) (string, error) { return "echo " + arg, nil })
	out, err := p.Invoke(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "echo x", out)
}
