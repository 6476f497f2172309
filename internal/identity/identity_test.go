package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesAndPersists(t *testing.T) {
	dir := t.TempDir()

	id, err := Load(dir)
	require.NoError(t, err)
	assert.NotEmpty(t, id.ParticipantID())
	assert.NotEmpty(t, id.Username())

	// same directory yields the same identity
	again, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, id.ParticipantID(), again.ParticipantID())
	assert.Equal(t, id.Username(), again.Username())
}

func TestRenamePersists(t *testing.T) {
	dir := t.TempDir()

	id, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, id.Rename("alice"))

	again, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username())
	assert.Equal(t, id.ParticipantID(), again.ParticipantID(), "rename must not rotate the participant id")
}
