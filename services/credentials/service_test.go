package credentials

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodflix/models"
)

func validSession() models.Session {
	return models.Session{
		AccessToken: "tok-abc",
		User:        models.UserInfo{ID: "u1", Name: "Alice"},
	}
}

func TestSaveAndReloadRoundtrip(t *testing.T) {
	fs := afero.NewMemMapFs()

	svc, err := NewService(fs, "/data")
	require.NoError(t, err)
	require.NoError(t, svc.Save(validSession()))

	// A fresh service over the same filesystem sees the persisted session.
	reloaded, err := NewService(fs, "/data")
	require.NoError(t, err)

	session := reloaded.Load()
	require.NotNil(t, session)
	assert.Equal(t, "tok-abc", session.AccessToken)
	assert.Equal(t, "u1", session.User.ID)
	assert.Equal(t, "tok-abc", reloaded.AccessToken())
}

func TestSaveRejectsIncompleteSessions(t *testing.T) {
	svc, err := NewService(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)

	noUser := models.Session{AccessToken: "tok"}
	assert.ErrorIs(t, svc.Save(noUser), ErrIncompleteSession)

	noToken := models.Session{User: models.UserInfo{ID: "u1"}}
	assert.ErrorIs(t, svc.Save(noToken), ErrIncompleteSession)

	assert.Nil(t, svc.Load(), "a rejected save must not leave a session behind")
}

func TestLoadReturnsCopy(t *testing.T) {
	svc, err := NewService(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	require.NoError(t, svc.Save(validSession()))

	first := svc.Load()
	first.AccessToken = "mutated"

	assert.Equal(t, "tok-abc", svc.Load().AccessToken)
}

func TestClearIsIdempotent(t *testing.T) {
	svc, err := NewService(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)

	// Clearing an empty store must not fail.
	require.NoError(t, svc.Clear())

	require.NoError(t, svc.Save(validSession()))
	require.NoError(t, svc.Clear())
	require.NoError(t, svc.Clear())

	assert.Nil(t, svc.Load())
	assert.Empty(t, svc.AccessToken())
}

func TestCorruptFileFailsLoud(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/credentials.json", []byte("{not json"), 0o600))

	_, err := NewService(fs, "/data")
	assert.Error(t, err)
}

func TestIncompletePersistedSessionCountsAsLoggedOut(t *testing.T) {
	fs := afero.NewMemMapFs()
	// Token with no user: a half-written legacy file.
	require.NoError(t, afero.WriteFile(fs, "/data/credentials.json", []byte(`{"accessToken":"tok"}`), 0o600))

	svc, err := NewService(fs, "/data")
	require.NoError(t, err)
	assert.Nil(t, svc.Load())
}

func TestSaveWritesNoOrphanTempFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	svc, err := NewService(fs, "/data")
	require.NoError(t, err)
	require.NoError(t, svc.Save(validSession()))

	exists, err := afero.Exists(fs, "/data/credentials.json.tmp")
	require.NoError(t, err)
	assert.False(t, exists, "temp file must be renamed away")
}
