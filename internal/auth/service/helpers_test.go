package service

import (
	"context"
	"testing"

	"github.com/openmotive/authd/internal/auth/domain"
	"github.com/openmotive/authd/internal/auth/scope"
	"github.com/openmotive/authd/internal/auth/store"
	"github.com/openmotive/authd/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

// newTestClient registers a client through the real service so tests
// exercise credential generation and validation on the way in.
func newTestClient(t *testing.T, st store.Store, typ domain.ClientType, mask scope.Mask) domain.Client {
	t.Helper()

	svc := &ClientService{Store: st, Scopes: scope.DefaultRegistry()}
	c, err := svc.Register(context.Background(), RegisterClientParams{
		Name:        "web-app",
		URL:         "https://app.example",
		RedirectURI: "https://app.example/callback",
		Type:        typ,
		Scope:       mask,
	})
	require.NoError(t, err)
	return c
}
