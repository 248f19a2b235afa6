package notes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleTransitions(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	note := &DeliveryNote{ID: 1}
	assert.Equal(t, LifecycleActive, note.Lifecycle())

	require.NoError(t, note.Trash(7, now))
	assert.Equal(t, LifecycleTrashed, note.Lifecycle())
	require.NotNil(t, note.DeletedAt)
	assert.Equal(t, now, *note.DeletedAt)
	require.NotNil(t, note.DeletedBy)
	assert.Equal(t, int64(7), *note.DeletedBy)

	// Double trash is rejected.
	assert.ErrorIs(t, note.Trash(7, now), ErrAlreadyTrashed)

	require.NoError(t, note.Untrash())
	assert.Equal(t, LifecycleActive, note.Lifecycle())
	assert.Nil(t, note.DeletedAt)
	assert.Nil(t, note.DeletedBy)

	// Restoring an active note is rejected.
	assert.ErrorIs(t, note.Untrash(), ErrNotTrashed)
}
