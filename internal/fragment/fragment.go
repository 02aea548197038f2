package fragment

import (
	"bytes"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/dshills/rvconf/internal/derive"
)

// Defaults for Options.
const (
	DefaultIncludesName = "includes"
	DefaultScriptsDir   = "scripts"
)

// Options controls discovery and merging.
type Options struct {
	// IncludesName is the base name (without extension) of fragments that
	// are never merged. Empty means DefaultIncludesName.
	IncludesName string
	// ScriptsDir is the name of directories holding procedure manifests,
	// which are skipped. Empty means DefaultScriptsDir.
	ScriptsDir string
	// SkipPaths lists further directories never scanned for fragments,
	// such as an explicit manifest directory inside root.
	SkipPaths []string
	// Strict turns key collisions into errors.
	Strict bool
}

func (o Options) withDefaults() Options {
	if o.IncludesName == "" {
		o.IncludesName = DefaultIncludesName
	}
	if o.ScriptsDir == "" {
		o.ScriptsDir = DefaultScriptsDir
	}
	return o
}

// Collision records a key overwritten during the merge. Sources are written
// as "path[table]".
type Collision struct {
	Key      string
	Previous string
	Current  string
}

// Result is the outcome of Load.
type Result struct {
	Config     derive.Config
	Files      []string
	Excluded   []string
	Collisions []Collision
	// Sources maps each key to the fragment table that set its final value.
	Sources map[string]string
}

// IsFragment reports whether path has a fragment file extension.
func IsFragment(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".yaml", ".yml":
		return true
	}
	return false
}

// Discover returns the fragment files under root that take part in the
// merge, and those excluded as includes fragments. Paths are relative to
// root, slash-separated and sorted.
func Discover(root string, opts Options) (files, excluded []string, err error) {
	opts = opts.withDefaults()
	skip, err := skipSet(root, opts.SkipPaths)
	if err != nil {
		return nil, nil, err
	}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if d.Name() == opts.ScriptsDir {
				return filepath.SkipDir
			}
			if rel, err := filepath.Rel(root, path); err == nil && skip[filepath.ToSlash(rel)] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !IsFragment(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		if name == opts.IncludesName {
			excluded = append(excluded, rel)
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "scanning %s", root)
	}
	sort.Strings(files)
	sort.Strings(excluded)
	return files, excluded, nil
}

// skipSet maps each skip path lying under root to its slash-separated path
// relative to root. Paths outside root are dropped.
func skipSet(root string, paths []string) (map[string]bool, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", root)
	}
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", p)
		}
		rel, err := filepath.Rel(absRoot, abs)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		set[filepath.ToSlash(rel)] = true
	}
	return set, nil
}

// Load discovers and merges every fragment under root.
func Load(root string, opts Options) (Result, error) {
	opts = opts.withDefaults()
	files, excluded, err := Discover(root, opts)
	if err != nil {
		return Result{}, err
	}
	for _, f := range excluded {
		log.WithField("file", f).Debug("skipping includes fragment")
	}

	res := Result{Files: files, Excluded: excluded, Sources: make(map[string]string)}
	merged := make(map[string]any)
	for _, rel := range files {
		tables, err := readFragment(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return Result{}, errors.WithStack(&ParseError{File: rel, Err: err})
		}
		log.WithFields(log.Fields{"file": rel, "tables": len(tables)}).Debug("loaded fragment")
		if err := mergeTables(&res, merged, rel, tables, opts.Strict); err != nil {
			return Result{}, err
		}
	}
	res.Config = derive.NewConfig(merged)
	return res, nil
}

func mergeTables(res *Result, merged map[string]any, rel string, tables map[string]any, strict bool) error {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		table, ok := tables[name].(map[string]any)
		if !ok {
			log.WithFields(log.Fields{"file": rel, "key": name}).Debug("ignoring top-level value outside a table")
			continue
		}
		source := rel + "[" + name + "]"
		keys := make([]string, 0, len(table))
		for k := range table {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if prev, dup := res.Sources[k]; dup {
				c := Collision{Key: k, Previous: prev, Current: source}
				if strict {
					return errors.WithStack(&CollisionError{Collision: c})
				}
				log.WithFields(log.Fields{
					"key":      k,
					"previous": prev,
					"current":  source,
				}).Warn("fragment key redefined; last definition wins")
				res.Collisions = append(res.Collisions, c)
			}
			merged[k] = table[k]
			res.Sources[k] = source
		}
	}
	return nil
}

func readFragment(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw := make(map[string]any)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}
	out, err := normalizeMap(raw)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// normalizeMap converts decoder-specific scalar types so integers are always
// int64 and tables are always map[string]any.
func normalizeMap(m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		n, err := normalize(v)
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", k)
		}
		out[k] = n
	}
	return out, nil
}

func normalize(v any) (any, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, errors.Errorf("integer %d overflows int64", x)
		}
		return int64(x), nil
	case map[string]any:
		return normalizeMap(x)
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, vv := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, errors.Errorf("non-string key %v", k)
			}
			m[ks] = vv
		}
		return normalizeMap(m)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(x))
		for i, e := range x {
			n, err := normalizeMap(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return v, nil
	}
}
