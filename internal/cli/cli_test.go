package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, CommandHelp, parsed.Command)
	require.True(t, parsed.ShowHelp)
}

func TestParseCommands(t *testing.T) {
	for _, cmd := range []Command{CommandWatch, CommandDemo, CommandDoctor, CommandVersion} {
		parsed, err := Parse([]string{string(cmd)})
		require.NoError(t, err)
		require.Equal(t, cmd, parsed.Command)
		require.False(t, parsed.ShowHelp)
	}
}

func TestParseSendWithPositions(t *testing.T) {
	parsed, err := Parse([]string{"send", "0", "13", "47"})
	require.NoError(t, err)
	require.Equal(t, CommandSend, parsed.Command)
	require.Equal(t, []string{"0", "13", "47"}, parsed.Args)
}

func TestParseSendNoPositions(t *testing.T) {
	parsed, err := Parse([]string{"send"})
	require.NoError(t, err)
	require.Equal(t, CommandSend, parsed.Command)
	require.Empty(t, parsed.Args)
}

func TestParseConfigFlag(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/keywire.conf", "watch"})
	require.NoError(t, err)
	require.Equal(t, CommandWatch, parsed.Command)
	require.Equal(t, "/tmp/keywire.conf", parsed.ConfigPath)
}

func TestParseConfigFlagMissingPath(t *testing.T) {
	_, err := Parse([]string{"--config"})
	require.Error(t, err)
}

func TestParseUnknownFlag(t *testing.T) {
	_, err := Parse([]string{"--verbose"})
	require.Error(t, err)
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse([]string{"observe"})
	require.Error(t, err)
}

func TestParseTrailingArgsRejectedForPlainCommands(t *testing.T) {
	_, err := Parse([]string{"watch", "extra"})
	require.Error(t, err)
}

func TestParseVersionFlag(t *testing.T) {
	parsed, err := Parse([]string{"--version"})
	require.NoError(t, err)
	require.Equal(t, CommandVersion, parsed.Command)
	require.False(t, parsed.ShowHelp)
}

func TestHelpTextMentionsCommands(t *testing.T) {
	text := HelpText("keywire")
	for _, want := range []string{"send", "watch", "demo", "doctor", "version", "--config"} {
		require.Contains(t, text, want)
	}
}
