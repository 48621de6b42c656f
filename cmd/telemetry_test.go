package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryCommandRegistered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"telemetry"})
	require.NoError(t, err)
	require.Equal(t, "telemetry", cmd.Name())

	subs := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subs[sub.Name()] = true
	}
	for _, name := range []string{"status", "enable", "disable"} {
		assert.True(t, subs[name], "missing telemetry subcommand %q", name)
	}
}

func TestTelemetrySubcommandsResolve(t *testing.T) {
	for _, path := range [][]string{
		{"telemetry", "enable"},
		{"telemetry", "disable"},
		{"telemetry", "status"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
		assert.NotNil(t, cmd.RunE, "%v has no run function", path)
	}
}
