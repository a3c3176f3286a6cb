package cli

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(got **Flags) func(*Flags) error {
	return func(f *Flags) error {
		*got = f
		return nil
	}
}

func TestRootCommandFlags(t *testing.T) {
	var got *Flags
	cmd := NewRootCommand(capture(&got))
	cmd.SetArgs([]string{"--config", `D:\games\config.json`, "--log-level", "debug", "--console", "--no-embed"})

	require.NoError(t, cmd.Execute())
	require.NotNil(t, got)
	assert.Equal(t, `D:\games\config.json`, got.ConfigPath)
	assert.Equal(t, "debug", got.LogLevel)
	assert.True(t, got.Console)
	assert.True(t, got.NoEmbed)
}

func TestRootCommandDefaults(t *testing.T) {
	var got *Flags
	cmd := NewRootCommand(capture(&got))
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, &Flags{}, got)
}

func TestRootCommandErrors(t *testing.T) {
	boom := errors.New("boom")
	fail := func(*Flags) error { return boom }

	cmd := NewRootCommand(fail)
	cmd.SetArgs([]string{"extra"})
	cmd.SetErr(io.Discard)
	assert.Error(t, cmd.Execute())

	cmd = NewRootCommand(fail)
	cmd.SetArgs([]string{})
	cmd.SetErr(io.Discard)
	assert.ErrorIs(t, cmd.Execute(), boom)
}
