package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentdeck/internal/domain"
)

func TestGenerateToken(t *testing.T) {
	token := GenerateToken()
	assert.True(t, strings.HasPrefix(token, "ak_"))
	assert.Len(t, token, 3+64) // prefix + 32 bytes hex-encoded
	assert.NotEqual(t, token, GenerateToken())
}

func TestAPIKeyCreate(t *testing.T) {
	db := testDB(t)
	owner := testUser(t, db, "alice")
	keys := NewAPIKeyStore(db)

	key, token, err := keys.Create(owner, "laptop")
	require.NoError(t, err)
	assert.NotZero(t, key.ID)
	assert.Equal(t, "laptop", key.Name)
	assert.True(t, strings.HasPrefix(token, key.Prefix))
	assert.True(t, key.IsActive)

	// Only the hash is stored.
	var stored string
	require.NoError(t, db.sql.QueryRow("SELECT key_hash FROM api_keys WHERE id = ?", key.ID).Scan(&stored))
	assert.NotEqual(t, token, stored)
	assert.NotContains(t, stored, token)
}

func TestAPIKeyCreate_NameRequired(t *testing.T) {
	db := testDB(t)
	owner := testUser(t, db, "alice")

	_, _, err := NewAPIKeyStore(db).Create(owner, "")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestAPIKeyList_MaskedPrefixOnly(t *testing.T) {
	db := testDB(t)
	owner := testUser(t, db, "alice")
	keys := NewAPIKeyStore(db)

	_, token, err := keys.Create(owner, "laptop")
	require.NoError(t, err)

	list, err := keys.List(owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, token[:11], list[0].Prefix)
	assert.True(t, list[0].LastUsedAt.IsZero())
}

func TestAPIKeyValidate(t *testing.T) {
	db := testDB(t)
	owner := testUser(t, db, "alice")
	keys := NewAPIKeyStore(db)

	key, token, err := keys.Create(owner, "laptop")
	require.NoError(t, err)

	ident, err := keys.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, owner, ident.OwnerID)
	assert.Equal(t, "alice", ident.Username)
	assert.Equal(t, key.ID, ident.KeyID)
}

func TestAPIKeyValidate_UnknownToken(t *testing.T) {
	db := testDB(t)
	testUser(t, db, "alice")

	_, err := NewAPIKeyStore(db).Validate("ak_" + strings.Repeat("00", 32))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAPIKeyValidate_DisabledKey(t *testing.T) {
	db := testDB(t)
	owner := testUser(t, db, "alice")
	keys := NewAPIKeyStore(db)

	key, token, err := keys.Create(owner, "laptop")
	require.NoError(t, err)

	ok, err := keys.ToggleActive(owner, key.ID, false)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = keys.Validate(token)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Re-enabling restores the key.
	ok, err = keys.ToggleActive(owner, key.ID, true)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = keys.Validate(token)
	assert.NoError(t, err)
}

func TestAPIKeyValidate_BumpsLastUsed(t *testing.T) {
	db := testDB(t)
	owner := testUser(t, db, "alice")
	keys := NewAPIKeyStore(db)

	_, token, err := keys.Create(owner, "laptop")
	require.NoError(t, err)

	_, err = keys.Validate(token)
	require.NoError(t, err)

	list, err := keys.List(owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].LastUsedAt.IsZero())
}

func TestAPIKeyDelete_WrongOwnerLooksAbsent(t *testing.T) {
	db := testDB(t)
	alice := testUser(t, db, "alice")
	bob := testUser(t, db, "bob")
	keys := NewAPIKeyStore(db)

	key, token, err := keys.Create(alice, "laptop")
	require.NoError(t, err)

	ok, err := keys.Delete(bob, key.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// Still valid for alice.
	_, err = keys.Validate(token)
	require.NoError(t, err)

	ok, err = keys.Delete(alice, key.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = keys.Validate(token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
