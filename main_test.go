package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMainApp(t *testing.T) {
	t.Run("app structure", func(t *testing.T) {
		app := newApp()

		require.Equal(t, "fps-r0", app.Name)
		require.Len(t, app.Commands, 6)
		require.Len(t, app.Flags, 2)

		commandNames := make(map[string]bool)
		for _, cmd := range app.Commands {
			commandNames[cmd.Name] = true
		}
		for _, name := range []string{"verify", "reconstruct", "witness", "selftest", "bench", "prove"} {
			require.True(t, commandNames[name], name)
		}
		require.False(t, commandNames["invalid-command"])
	})

	t.Run("help command", func(t *testing.T) {
		var buf bytes.Buffer
		app := newApp()
		app.Writer = &buf

		err := app.Run(context.Background(), []string{"fps-r0", "--help"})
		require.NoError(t, err)

		output := buf.String()
		require.Contains(t, output, "fps-r0")
		require.Contains(t, output, "COMMANDS:")
		require.Contains(t, output, "--log-level")
	})
}

// TestMainCommands checks that every command prints its help
func TestMainCommands(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		contains string
	}{
		{name: "verify help", args: []string{"fps-r0", "verify", "--help"}, contains: "--signature-encoding"},
		{name: "reconstruct help", args: []string{"fps-r0", "reconstruct", "--help"}, contains: "--witness"},
		{name: "witness help", args: []string{"fps-r0", "witness", "--help"}, contains: "encode"},
		{name: "selftest help", args: []string{"fps-r0", "selftest", "--help"}, contains: "--samples"},
		{name: "bench help", args: []string{"fps-r0", "bench", "--help"}, contains: "--iterations"},
		{name: "prove help", args: []string{"fps-r0", "prove", "--help"}, contains: "--full"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			app := newApp()
			app.Writer = &buf
			app.ErrWriter = &buf

			require.NoError(t, app.Run(context.Background(), tc.args))
			require.Contains(t, buf.String(), tc.contains)
		})
	}
}
