package config

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetSet(t *testing.T) {
	s := New(map[string]any{
		"foo": "bar",
		"main": map[string]any{
			"paths": map[string]any{"root": "/srv/app"},
		},
	})

	assert.Equal(t, "bar", s.Get("foo"))
	assert.Equal(t, "/srv/app", s.Get("main.paths.root"))
	assert.Nil(t, s.Get("main.paths.missing"))
	assert.Nil(t, s.Get("foo.bar"))

	require.NoError(t, s.Set("main.paths.temp", "/srv/app/.tmp"))
	assert.Equal(t, "/srv/app/.tmp", s.Get("main.paths.temp"))

	require.NoError(t, s.Set("deep.new.key", 1))
	assert.Equal(t, 1, s.Get("deep.new.key"))
}

func TestStore_SetReplacesScalarIntermediate(t *testing.T) {
	s := New(map[string]any{"foo": "bar"})
	require.NoError(t, s.Set("foo.baz", 1))
	assert.Equal(t, 1, s.Get("foo.baz"))
}

func TestStore_InvalidPaths(t *testing.T) {
	s := New(nil)
	for _, p := range []string{"", ".", "a..b", "a."} {
		assert.ErrorIs(t, s.Set(p, 1), ErrInvalidPath, p)
		_, ok := s.Lookup(p)
		assert.False(t, ok, p)
	}
}

func TestStore_Require(t *testing.T) {
	s := New(map[string]any{"a": 1})

	v, err := s.Require("a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = s.Require("b")
	assert.ErrorIs(t, err, ErrPathNotFound)
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("b"))
}

func TestStore_SeedIsCopied(t *testing.T) {
	seed := map[string]any{"nested": map[string]any{"k": "v"}}
	s := New(seed)

	seed["nested"].(map[string]any)["k"] = "changed"
	assert.Equal(t, "v", s.Get("nested.k"))
}

func TestStore_ReadsAreCopies(t *testing.T) {
	s := New(map[string]any{
		"nested": map[string]any{"k": "v"},
		"list":   []any{"a"},
	})

	m := s.Get("nested").(map[string]any)
	m["k"] = "changed"
	l := s.Get("list").([]any)
	l[0] = "changed"

	assert.Equal(t, "v", s.Get("nested.k"))
	assert.Equal(t, []any{"a"}, s.Get("list"))
}

func TestStore_FrozenTypedComposites(t *testing.T) {
	s := New(map[string]any{
		"ports":  []int{1, 2},
		"hosts":  []map[string]any{{"name": "a"}},
		"limits": map[string]int{"conn": 10},
		"pair":   [2]string{"x", "y"},
	})
	s.Freeze()

	s.Get("ports").([]int)[0] = 99
	s.Get("hosts").([]map[string]any)[0]["name"] = "mutated"
	s.Get("limits").(map[string]int)["conn"] = 0
	s.All()["ports"].([]int)[1] = 99

	assert.Equal(t, []int{1, 2}, s.Get("ports"))
	assert.Equal(t, []map[string]any{{"name": "a"}}, s.Get("hosts"))
	assert.Equal(t, map[string]int{"conn": 10}, s.Get("limits"))
	assert.Equal(t, [2]string{"x", "y"}, s.Get("pair"))
}

func TestStore_SetCopiesTypedComposites(t *testing.T) {
	s := New(nil)
	ports := []int{1, 2}
	require.NoError(t, s.Set("ports", ports))

	ports[0] = 99
	assert.Equal(t, []int{1, 2}, s.Get("ports"))
}

func TestStore_Freeze(t *testing.T) {
	s := New(map[string]any{"foo": "bar"})
	require.NoError(t, s.Set("foo", "baz"))

	s.Freeze()
	s.Freeze()
	assert.True(t, s.Frozen())

	assert.ErrorIs(t, s.Set("foo", 1), ErrFrozen)
	_, err := s.SetDefault("other", 1)
	assert.ErrorIs(t, err, ErrFrozen)
	assert.ErrorIs(t, s.Merge(map[string]any{"x": 1}), ErrFrozen)

	assert.Equal(t, "baz", s.Get("foo"))
	assert.False(t, s.Has("x"))
}

func TestStore_SetDefault(t *testing.T) {
	s := New(map[string]any{"main": map[string]any{"paths": map[string]any{"temp": "/custom"}}})

	set, err := s.SetDefault("main.paths.temp", "/default")
	require.NoError(t, err)
	assert.False(t, set)
	assert.Equal(t, "/custom", s.Get("main.paths.temp"))

	set, err = s.SetDefault("main.paths.logs", "/logs")
	require.NoError(t, err)
	assert.True(t, set)
	assert.Equal(t, "/logs", s.Get("main.paths.logs"))
}

func TestStore_MergeDefaultsNeverOverride(t *testing.T) {
	s := New(map[string]any{
		"testpack": map[string]any{
			"override": "ok",
			"defaultObject": map[string]any{
				"override": "ok",
			},
			"defaultArray": []any{"user"},
		},
	})

	err := s.Merge(map[string]any{
		"testpack": map[string]any{
			"defaultValue": "default",
			"override":     "ko",
			"defaultArray": []any{"ok"},
			"defaultObject": map[string]any{
				"test":     "ok",
				"override": "ko",
			},
		},
		"other": map[string]any{"enabled": true},
	})
	require.NoError(t, err)

	assert.Equal(t, "default", s.Get("testpack.defaultValue"))
	assert.Equal(t, "ok", s.Get("testpack.override"))
	assert.Equal(t, []any{"user"}, s.Get("testpack.defaultArray"))
	assert.Equal(t, "ok", s.Get("testpack.defaultObject.test"))
	assert.Equal(t, "ok", s.Get("testpack.defaultObject.override"))
	assert.Equal(t, true, s.Get("other.enabled"))
}

func TestStore_MergeDoesNotAliasDefaults(t *testing.T) {
	defaults := map[string]any{"pack": map[string]any{"list": []any{"a"}}}
	s := New(nil)
	require.NoError(t, s.Merge(defaults))

	defaults["pack"].(map[string]any)["list"].([]any)[0] = "changed"
	assert.Equal(t, []any{"a"}, s.Get("pack.list"))
}

func TestStore_TypedGetters(t *testing.T) {
	s := New(map[string]any{
		"name":    "demo",
		"port":    int64(8080),
		"portStr": "9090",
		"debug":   "true",
		"timeout": "1500ms",
		"hosts":   []any{"a", "b"},
		"nested":  map[string]any{"k": "v"},
	})

	assert.Equal(t, "demo", s.GetString("name"))
	assert.Equal(t, 8080, s.GetInt("port"))
	assert.Equal(t, 9090, s.GetInt("portStr"))
	assert.True(t, s.GetBool("debug"))
	assert.Equal(t, 1500*time.Millisecond, s.GetDuration("timeout"))
	assert.Equal(t, []string{"a", "b"}, s.GetStringSlice("hosts"))
	assert.Equal(t, map[string]any{"k": "v"}, s.GetStringMap("nested"))
	assert.Equal(t, "", s.GetString("missing"))
}

func TestStore_Decode(t *testing.T) {
	type watcher struct {
		Files    []string      `config:"files"`
		Debounce time.Duration `config:"debounce"`
		Enabled  bool          `config:"enabled"`
	}

	s := New(map[string]any{
		"watcher": map[string]any{
			"files":    []any{"a.toml", "b.toml"},
			"debounce": "250ms",
			"enabled":  "true",
		},
	})

	var w watcher
	require.NoError(t, s.Decode("watcher", &w))
	assert.Equal(t, []string{"a.toml", "b.toml"}, w.Files)
	assert.Equal(t, 250*time.Millisecond, w.Debounce)
	assert.True(t, w.Enabled)

	untouched := watcher{Enabled: true}
	require.NoError(t, s.Decode("missing", &untouched))
	assert.True(t, untouched.Enabled)
}

func TestStore_All(t *testing.T) {
	s := New(map[string]any{"a": map[string]any{"b": 1}})
	all := s.All()
	all["a"].(map[string]any)["b"] = 2
	assert.Equal(t, 1, s.Get("a.b"))
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = s.Set("k", i)
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Get("k")
		}()
	}
	wg.Wait()
	s.Freeze()
	assert.ErrorIs(t, s.Set("k", 0), ErrFrozen)
}
