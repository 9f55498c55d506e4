package ignores

import (
	"context"
	"net/http"
	"testing"

	"lair-scanner/core/api"
	"lair-scanner/core/api/apitest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestService_Global(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	srv.SetIgnores("**/*.nfo")
	svc := NewService(srv.Client(t), zaptest.NewLogger(t))

	ignores, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.nfo"}, ignores)

	ignores, err = svc.Add(ctx, "", "**/*.tmp", "**/*.nfo", "**/*.part")
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.nfo", "**/*.tmp", "**/*.part"}, ignores)
	assert.Equal(t, ignores, srv.Ignores())

	ignores, err = svc.Remove(ctx, "", "**/*.nfo", "**/*.unknown")
	require.NoError(t, err)
	assert.Equal(t, []string{"**/*.tmp", "**/*.part"}, ignores)
	assert.Equal(t, ignores, srv.Ignores())
}

func TestService_Source(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	source := srv.AddSource("movies", "/Films")
	srv.SetSourceIgnores(source.ID, "extras/**")
	svc := NewService(srv.Client(t), zaptest.NewLogger(t))

	ignores, err := svc.List(ctx, "movies")
	require.NoError(t, err)
	assert.Equal(t, []string{"extras/**"}, ignores)

	_, err = svc.Add(ctx, "movies", "**/sample.*")
	require.NoError(t, err)
	assert.Equal(t, []string{"extras/**", "**/sample.*"}, srv.Source("movies").Properties.Ignores)

	_, err = svc.Remove(ctx, "movies", "extras/**")
	require.NoError(t, err)
	assert.Equal(t, []string{"**/sample.*"}, srv.Source("movies").Properties.Ignores)

	assert.Empty(t, srv.Ignores())
}

func TestService_Errors(t *testing.T) {
	ctx := context.Background()
	srv := apitest.New(t)
	svc := NewService(srv.Client(t), zaptest.NewLogger(t))

	t.Run("InvalidPattern", func(t *testing.T) {
		_, err := svc.Add(ctx, "", "[unclosed")
		assert.Error(t, err)
		assert.Zero(t, srv.MutatingCalls())
	})

	t.Run("UnknownSource", func(t *testing.T) {
		_, err := svc.Add(ctx, "music", "**/*.tmp")
		assert.ErrorIs(t, err, api.ErrNotFound)
	})

	t.Run("UpdateRejected", func(t *testing.T) {
		srv.Fail(http.MethodPatch, "/media/settings", http.StatusBadRequest)
		_, err := svc.Add(ctx, "", "**/*.tmp")
		assert.True(t, api.IsStatus(err, http.StatusBadRequest))
	})
}
