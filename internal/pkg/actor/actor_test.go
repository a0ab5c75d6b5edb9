package actor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Run("missing actor is a system action", func(t *testing.T) {
		id, ok := FromContext(context.Background())
		assert.False(t, ok)
		assert.Equal(t, System, id)
		assert.Nil(t, Ref(context.Background()))
	})

	t.Run("actor round trips", func(t *testing.T) {
		ctx := WithActor(context.Background(), "user-42")

		id, ok := FromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, "user-42", id)

		ref := Ref(ctx)
		require.NotNil(t, ref)
		assert.Equal(t, "user-42", *ref)
	})

	t.Run("empty actor is treated as system", func(t *testing.T) {
		ctx := WithActor(context.Background(), "")
		assert.Nil(t, Ref(ctx))
	})
}
