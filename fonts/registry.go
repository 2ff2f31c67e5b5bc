// Package fonts is the font registry used by the compositor.
//
// A Registry maps family keys (as stored in text layers) to font sources,
// with one source per weight. Unknown keys never fail a render: they resolve
// to the fallback family, which is the Go font family bundled with
// golang.org/x/image.
//
// The registry is an ordinary value passed to whoever needs it; there is no
// package-level registry.
package fonts

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/thumbnail"
)

// FallbackKey is the key of the family used for unknown keys.
const FallbackKey = "go"

// Family is a set of font sources of one typeface, indexed by weight.
// A Family is immutable once returned by a Registry.
type Family struct {
	Name    string
	sources map[int]*text.FontSource
	bundled bool
}

func newFamily(name string) *Family {
	return &Family{Name: name, sources: make(map[int]*text.FontSource)}
}

// Weights returns the registered weights in ascending order.
func (f *Family) Weights() []int {
	ws := make([]int, 0, len(f.sources))
	for w := range f.sources {
		ws = append(ws, w)
	}
	sort.Ints(ws)
	return ws
}

// Source returns the source whose weight is closest to weight. On a tie the
// heavier source wins for weights of 500 and above, the lighter one below.
func (f *Family) Source(weight int) *text.FontSource {
	var (
		best     *text.FontSource
		bestDist = -1
		bestW    int
	)
	for _, w := range f.Weights() {
		d := w - weight
		if d < 0 {
			d = -d
		}
		switch {
		case bestDist < 0, d < bestDist:
		case d == bestDist && weight >= 500 && w > bestW:
		default:
			continue
		}
		best, bestDist, bestW = f.sources[w], d, w
	}
	return best
}

// Face returns a face of the given weight and pixel size.
func (f *Family) Face(weight int, size float64) text.Face {
	src := f.Source(weight)
	if src == nil {
		return nil
	}
	return src.Face(size)
}

// Registry maps family keys to families. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	families map[string]*Family
	fallback *Family
}

// NewRegistry returns a registry preloaded with the Go fonts. The sans
// family answers to "go", "arial" and "sans-serif"; the monospaced one to
// "gomono" and "monospace".
func NewRegistry() *Registry {
	sans := newFamily("Go")
	sans.bundled = true
	sans.sources[400] = mustSource(goregular.TTF)
	sans.sources[500] = mustSource(gomedium.TTF)
	sans.sources[700] = mustSource(gobold.TTF)

	mono := newFamily("Go Mono")
	mono.bundled = true
	mono.sources[400] = mustSource(gomono.TTF)
	mono.sources[700] = mustSource(gomonobold.TTF)

	r := &Registry{
		families: map[string]*Family{
			FallbackKey:  sans,
			"arial":      sans,
			"sans-serif": sans,
			"gomono":     mono,
			"monospace":  mono,
		},
		fallback: sans,
	}
	return r
}

// mustSource parses a bundled font. The bundled data is known to be valid.
func mustSource(data []byte) *text.FontSource {
	src, err := text.NewFontSource(data)
	if err != nil {
		panic("fonts: bundled font: " + err.Error())
	}
	return src
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Resolve returns the family registered under key.
func (r *Registry) Resolve(key string) (*Family, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.families[normalize(key)]
	return f, ok
}

// Fallback returns the family used for unknown keys.
func (r *Registry) Fallback() *Family {
	return r.fallback
}

// Face returns a face for key at the given weight and size. Unknown keys
// resolve to the fallback family; the result is never nil.
func (r *Registry) Face(key string, weight int, size float64) text.Face {
	f, ok := r.Resolve(key)
	if !ok {
		thumbnail.Logger().Debug("fonts: unknown family, using fallback", "key", key)
		f = r.fallback
	}
	return f.Face(weight, size)
}

// Register adds font data as the regular (400) weight of family name and
// returns the key the family is reachable under.
func (r *Registry) Register(name string, data []byte) (string, error) {
	return r.RegisterWeight(name, 400, data)
}

// RegisterWeight adds font data for one weight of family name. Registering
// under a bundled key rebinds that key to a new family; the bundled
// families themselves are never modified.
func (r *Registry) RegisterWeight(name string, weight int, data []byte) (string, error) {
	key := normalize(name)
	if key == "" {
		return "", ErrEmptyName
	}
	if err := sniff(data); err != nil {
		return "", fmt.Errorf("fonts: %s: %w", name, err)
	}
	src, err := text.NewFontSource(data)
	if err != nil {
		return "", fmt.Errorf("fonts: %s: %w: %w", name, ErrNotFont, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Families are copied on write so faces can be resolved without locking.
	next := newFamily(strings.TrimSpace(name))
	if f, ok := r.families[key]; ok && !f.bundled {
		next.Name = f.Name
		maps.Copy(next.sources, f.sources)
	}
	next.sources[weight] = src
	r.families[key] = next
	thumbnail.Logger().Info("fonts: registered", "key", key, "weight", weight, "font", src.Name())
	return key, nil
}

// RegisterFile registers a font file under its base name without extension.
func (r *Registry) RegisterFile(path string) (string, error) {
	// #nosec G304 -- font path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("fonts: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return r.Register(name, data)
}

// RegisterDir registers every .ttf and .otf file in dir. Files that fail
// are reported together; the others stay registered.
func (r *Registry) RegisterDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("fonts: %w", err)
	}
	var (
		keys []string
		errs []error
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".ttf", ".otf":
		default:
			continue
		}
		key, err := r.RegisterFile(filepath.Join(dir, e.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		keys = append(keys, key)
	}
	return keys, errors.Join(errs...)
}

// Keys returns all registered keys, sorted.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.families))
	for k := range r.families {
		keys = append(keys, k)
	}
	r.mu.RUnlock()
	slices.Sort(keys)
	return keys
}

// Search returns the keys matching query, best match first. An empty query
// returns all keys.
func (r *Registry) Search(query string) []string {
	keys := r.Keys()
	if strings.TrimSpace(query) == "" {
		return keys
	}
	ranks := fuzzy.RankFindNormalizedFold(query, keys)
	sort.Sort(ranks)
	out := make([]string, len(ranks))
	for i, rk := range ranks {
		out[i] = rk.Target
	}
	return out
}
