package trails_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/trails"
	"github.com/bft-labs/trails/pkg/trailpack"
)

type probe struct {
	trailpack.Base
	unloaded chan struct{}
}

func (p *probe) Unload(ctx context.Context, app trailpack.App) error {
	close(p.unloaded)
	return nil
}

func TestRun_StopsWhenContextEnds(t *testing.T) {
	p := &probe{Base: trailpack.Base{Package: trails.Pkg{Name: "probe"}}, unloaded: make(chan struct{})}
	def := &trails.Definition{
		Pkg:    &trails.Pkg{Name: "run"},
		API:    map[string]any{},
		Config: map[string]any{"main": map[string]any{"packs": []trails.Trailpack{p}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := trails.Run(ctx, def, trails.WithFs(afero.NewMemMapFs()), trails.WithWorkingDir(t.TempDir()))
	require.NoError(t, err)

	select {
	case <-p.unloaded:
	default:
		t.Fatal("trailpack was not unloaded")
	}
}

func TestRun_ReportsStartFailure(t *testing.T) {
	cause := errors.New("boom")
	def := &trails.Definition{
		Pkg:    &trails.Pkg{Name: "run"},
		API:    map[string]any{},
		Config: map[string]any{"main": map[string]any{"packs": []trails.Trailpack{
			&failing{Base: trailpack.Base{Package: trails.Pkg{Name: "failing"}}, err: cause},
		}}},
	}

	err := trails.Run(context.Background(), def, trails.WithFs(afero.NewMemMapFs()), trails.WithWorkingDir(t.TempDir()))
	assert.ErrorIs(t, err, cause)
}

type failing struct {
	trailpack.Base
	err error
}

func (f *failing) Validate(ctx context.Context, app trailpack.App) error { return f.err }

func TestLoadDefinition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trails.toml")
	require.NoError(t, os.WriteFile(path, []byte("[pkg]\nname = \"loaded\"\n[api]\n"), 0o644))

	def, err := trails.LoadDefinition(path)
	require.NoError(t, err)
	assert.Equal(t, "loaded", def.Pkg.Name)

	_, err = trails.New(nil)
	assert.Error(t, err)
}
