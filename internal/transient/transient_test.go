package transient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStore_MarkActive(t *testing.T) {
	t.Run("flag expires on its own", func(t *testing.T) {
		store := NewStore()
		t.Cleanup(store.Close)

		store.MarkActive("1", 20*time.Millisecond)

		assert.True(t, store.Active("1"))

		assert.Eventually(t, func() bool {
			return !store.Active("1")
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("remark supersedes the previous timer", func(t *testing.T) {
		store := NewStore()
		t.Cleanup(store.Close)

		store.MarkActive("1", 40*time.Millisecond)
		time.Sleep(10 * time.Millisecond)
		store.MarkActive("1", 200*time.Millisecond)

		// Past the first deadline; only the second timer may deactivate.
		time.Sleep(60 * time.Millisecond)
		assert.True(t, store.Active("1"))

		assert.Eventually(t, func() bool {
			return !store.Active("1")
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("keys are independent", func(t *testing.T) {
		store := NewStore()
		t.Cleanup(store.Close)

		store.MarkActive("1", time.Minute)
		store.MarkActive("2", time.Minute)

		store.Clear("1")

		assert.False(t, store.Active("1"))
		assert.True(t, store.Active("2"))
	})
}

func TestStore_Clear(t *testing.T) {
	t.Run("cancels the pending timer", func(t *testing.T) {
		store := NewStore()
		t.Cleanup(store.Close)

		store.MarkActive("1", time.Minute)
		store.Clear("1")

		assert.False(t, store.Active("1"))
	})

	t.Run("unset key is a no-op", func(t *testing.T) {
		store := NewStore()
		t.Cleanup(store.Close)

		store.Clear("missing")

		assert.False(t, store.Active("missing"))
	})
}

func TestStore_Close(t *testing.T) {
	store := NewStore()

	store.MarkActive("1", time.Minute)
	store.MarkActive("2", time.Minute)

	store.Close()

	assert.False(t, store.Active("1"))
	assert.False(t, store.Active("2"))
}
