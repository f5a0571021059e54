package acl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUserRecordFull(t *testing.T) {
	u, err := ParseUserRecord([]string{"alice", "on", "+GET", "+SET", "+$keyspace", ">hunter2"})
	require.NoError(t, err)
	require.Equal(t, "alice", u.Name)
	require.True(t, u.Enabled)
	require.True(t, u.Commands["GET"])
	require.True(t, u.Commands["SET"])
	require.True(t, u.Categories["keyspace"])
	require.True(t, u.Authenticate("hunter2"))
	require.False(t, u.Authenticate("wrong"))
}

func TestParseUserRecordNoPass(t *testing.T) {
	u, err := ParseUserRecord([]string{"bob", "on", "nopass"})
	require.NoError(t, err)
	require.True(t, u.Authenticate("anything"))
}

func TestParseUserRecordRejectsUnknownToken(t *testing.T) {
	_, err := ParseUserRecord([]string{"carol", "???"})
	require.Error(t, err)
}

func TestCanRunByCommandOrCategory(t *testing.T) {
	u, err := ParseUserRecord([]string{"dave", "on", "+$admin"})
	require.NoError(t, err)
	require.True(t, u.CanRun("FLUSHDB", "admin"))
	require.False(t, u.CanRun("FLUSHDB", "keyspace"))
}

func TestAuthenticateMultiplePasswords(t *testing.T) {
	u, err := ParseUserRecord([]string{"erin", "on", ">first", ">second"})
	require.NoError(t, err)
	require.True(t, u.Authenticate("first"))
	require.True(t, u.Authenticate("second"))
	require.False(t, u.Authenticate("third"))
}
