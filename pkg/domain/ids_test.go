package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/ahmadsobohhh/UnityPlatform/pkg/domain-errors"
)

// TestParseUserID_Invariants validates the parsing invariant:
// "user ids must be non-empty after trimming".
func TestParseUserID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects whitespace-only string", func(t *testing.T) {
		_, err := ParseUserID("   ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts opaque provider uid", func(t *testing.T) {
		id, err := ParseUserID("fbu_8c1aWQ")
		require.NoError(t, err)
		assert.Equal(t, UserID("fbu_8c1aWQ"), id)
	})
}

// TestParseClassID_Invariants validates that class ids are UUIDs minted by
// this service.
func TestParseClassID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseClassID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseClassID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts minted ids", func(t *testing.T) {
		minted := NewClassID()
		parsed, err := ParseClassID(minted.String())
		require.NoError(t, err)
		assert.Equal(t, minted, parsed)
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.NewString()
		parsed, err := ParseClassID(validUUID)
		require.NoError(t, err)
		assert.Equal(t, ClassID(validUUID), parsed)
	})
}
