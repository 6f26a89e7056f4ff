package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/naka-gawa/star-trend/internal/config"
	"github.com/naka-gawa/star-trend/internal/store"
	"github.com/naka-gawa/star-trend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepository(t *testing.T) {
	testCases := []struct {
		arg           string
		expectedOwner string
		expectedName  string
		expectError   bool
	}{
		{arg: "octo/hello", expectedOwner: "octo", expectedName: "hello"},
		{arg: "octo/hello/", expectedOwner: "octo", expectedName: "hello"},
		{arg: "octo", expectError: true},
		{arg: "/hello", expectError: true},
		{arg: "octo/", expectError: true},
		{arg: "a/b/c", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.arg, func(t *testing.T) {
			owner, name, err := parseRepository(tc.arg)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedOwner, owner)
			assert.Equal(t, tc.expectedName, name)
		})
	}
}

func TestNothingLoaded(t *testing.T) {
	st := store.New()
	assert.False(t, nothingLoaded(st.Snapshot()))

	for _, key := range []store.Key{store.KeyRepoStats, store.KeyStarData} {
		req, err := st.Begin(key)
		require.NoError(t, err)
		require.NoError(t, req.Fail(errors.New("boom")))
	}
	assert.True(t, nothingLoaded(st.Snapshot()))
}

func TestWriteView_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trend.json")
	cfg := &config.Config{Format: config.FormatJSON, Output: path}

	require.NoError(t, writeView(cfg, &usecase.View{Status: map[string]string{"repoStats": "idle"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"repoStats": "idle"`)
}
