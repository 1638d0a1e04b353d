package paths

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/trails/pkg/config"
)

func TestDefaults(t *testing.T) {
	cwd := filepath.FromSlash("/srv/app")
	store := config.New(nil)

	require.NoError(t, Defaults(store, cwd))

	assert.Equal(t, cwd, store.GetString("main.paths.root"))
	assert.Equal(t, filepath.Join(cwd, ".tmp"), store.GetString("main.paths.temp"))
	assert.Equal(t, filepath.Join(cwd, ".tmp", "log"), store.GetString("main.paths.logs"))
	assert.Equal(t, filepath.Join(cwd, ".tmp", "sockets"), store.GetString("main.paths.sockets"))
}

func TestDefaults_KeepsOverrides(t *testing.T) {
	cwd := filepath.FromSlash("/srv/app")
	store := config.New(map[string]any{
		"main": map[string]any{
			"paths": map[string]any{
				"root": filepath.FromSlash("/opt/site"),
				"logs": filepath.FromSlash("/var/log/site"),
			},
		},
	})

	require.NoError(t, Defaults(store, cwd))

	assert.Equal(t, filepath.FromSlash("/opt/site"), store.GetString("main.paths.root"))
	assert.Equal(t, filepath.FromSlash("/opt/site/.tmp"), store.GetString("main.paths.temp"))
	assert.Equal(t, filepath.FromSlash("/var/log/site"), store.GetString("main.paths.logs"))
	assert.Equal(t, filepath.FromSlash("/opt/site/.tmp/sockets"), store.GetString("main.paths.sockets"))
}

func TestDefaults_RelativeRoot(t *testing.T) {
	cwd := filepath.FromSlash("/srv/app")
	store := config.New(map[string]any{
		"main": map[string]any{"paths": map[string]any{"root": "site"}},
	})

	require.NoError(t, Defaults(store, cwd))
	assert.Equal(t, filepath.FromSlash("/srv/app/site"), store.GetString("main.paths.root"))
	assert.Equal(t, filepath.FromSlash("/srv/app/site/.tmp"), store.GetString("main.paths.temp"))
}

func TestDefaults_FrozenStore(t *testing.T) {
	store := config.New(nil)
	store.Freeze()

	err := Defaults(store, "/srv/app")
	assert.ErrorIs(t, err, config.ErrFrozen)
}

func TestEnsure(t *testing.T) {
	fs := afero.NewMemMapFs()
	cwd := filepath.FromSlash("/srv/app")
	store := config.New(map[string]any{
		"main": map[string]any{"paths": map[string]any{"uploads": "public/uploads"}},
	})
	require.NoError(t, Defaults(store, cwd))

	require.NoError(t, Ensure(fs, store, nil))

	for _, dir := range []string{
		cwd,
		filepath.Join(cwd, ".tmp"),
		filepath.Join(cwd, ".tmp", "log"),
		filepath.Join(cwd, ".tmp", "sockets"),
		filepath.Join(cwd, "public", "uploads"),
	} {
		ok, err := afero.DirExists(fs, dir)
		require.NoError(t, err)
		assert.True(t, ok, dir)
	}
}

func TestEnsure_RejectsNonString(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := config.New(map[string]any{
		"main": map[string]any{"paths": map[string]any{"bad": []string{"a", "b"}}},
	})

	err := Ensure(fs, store, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main.paths.bad")
}

func TestEnsure_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	store := config.New(nil)
	require.NoError(t, Defaults(store, "/srv/app"))

	assert.Error(t, Ensure(fs, store, nil))
}
