package cart

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcastillo/botilleria/internal/domain"
)

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	lines := []domain.CartLine{
		{ProductID: "p1", Name: "Ron añejo", UnitPriceCents: 8990, Quantity: 2},
	}
	require.NoError(t, store.Save(ctx, "cart-a", lines))

	got, err := store.Load(ctx, "cart-a")
	require.NoError(t, err)
	assert.Equal(t, lines, got)
}

func TestFileStore_MissingKeyYieldsEmptyCart(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	got, err := store.Load(context.Background(), "never-saved")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStore_CorruptFileYieldsEmptyCart(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644))

	got, err := store.Load(context.Background(), "broken")
	require.NoError(t, err)
	assert.Empty(t, got, "corrupt data must hydrate an empty cart, not an error")
}

func TestFileStore_KeyIsSanitized(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "../escape", []domain.CartLine{{ProductID: "p1", Quantity: 1}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "cart file must stay inside the base directory")
}

func TestFileStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "cart-a", []domain.CartLine{{ProductID: "p1", Quantity: 1}}))
	require.NoError(t, store.Delete(ctx, "cart-a"))
	require.NoError(t, store.Delete(ctx, "cart-a"), "deleting a missing cart is not an error")

	got, err := store.Load(ctx, "cart-a")
	require.NoError(t, err)
	assert.Empty(t, got)
}
