package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestParseSkipsCommentsAndBlankLines(t *testing.T) {
	cfg, err := Parse("# a comment\n\nport 7000\n")
	require.NoError(t, err)
	require.Equal(t, uint16(7000), cfg.Port)
}

func TestParseFullDirectiveSet(t *testing.T) {
	contents := `
bind 0.0.0.0
port 7001
protected-mode no
tcp-backlog 64
loglevel debug
logfile /var/log/lexid.log
databases 4
user alice on +GET +SET >secret
`
	cfg, err := Parse(contents)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.BindAddr)
	require.Equal(t, uint16(7001), cfg.Port)
	require.False(t, cfg.ProtectedMode)
	require.Equal(t, 64, cfg.TCPBacklog)
	require.Equal(t, LogDebug, cfg.LogLevel)
	require.Equal(t, "/var/log/lexid.log", cfg.LogFile)
	require.Equal(t, 4, cfg.Databases)
	require.Len(t, cfg.Users, 1)
	require.Equal(t, "alice", cfg.Users[0].Name)
}

func TestParseMultipleUsers(t *testing.T) {
	contents := "user alice on nopass\nuser bob off\n"
	cfg, err := Parse(contents)
	require.NoError(t, err)
	require.Len(t, cfg.Users, 2)
}

func TestParseRejectsUnrecognizedDirective(t *testing.T) {
	_, err := Parse("bogus 1\n")
	require.Error(t, err)
}

func TestParseRejectsBadPort(t *testing.T) {
	_, err := Parse("port notanumber\n")
	require.Error(t, err)
}
