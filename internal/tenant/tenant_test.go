package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	in := &Tenant{ID: "acme", Name: "Acme Inc", Status: "active"}
	ctx := WithTenant(context.Background(), in)

	out, err := FromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acme", out.ID)
}

func TestFromContextMissing(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoTenant)
}

func TestStaticStore(t *testing.T) {
	store := NewStaticStore(&Tenant{ID: "acme", Name: "Acme"})

	got, err := store.GetTenant("acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	_, err = store.GetTenant("other")
	assert.ErrorIs(t, err, ErrNoTenant)

	_, err = store.GetTenant("")
	assert.ErrorIs(t, err, ErrInvalidTenant)
}

func TestOpenStoreResolvesAnyID(t *testing.T) {
	store := NewOpenStore()

	got, err := store.GetTenant("anyone")
	require.NoError(t, err)
	assert.Equal(t, "anyone", got.ID)
	assert.Equal(t, "active", got.Status)

	_, err = store.GetTenant("")
	assert.ErrorIs(t, err, ErrInvalidTenant)
}
