package pipeline

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/dshills/rvconf/internal/cache"
	"github.com/dshills/rvconf/internal/derive"
	"github.com/dshills/rvconf/internal/derive/procs"
	"github.com/dshills/rvconf/internal/fragment"
	"github.com/dshills/rvconf/internal/manifest"
)

// Options configures a Run.
type Options struct {
	// Root is the fragment directory.
	Root string
	// ScriptsPath, when set, is a directory whose YAML files are all
	// procedure manifests. Otherwise manifests are discovered in
	// directories named ScriptsDir under Root.
	ScriptsPath  string
	ScriptsDir   string
	IncludesName string
	Strict       bool
	// Registry defaults to the built-in procedures.
	Registry *derive.Registry
	// Cache is optional.
	Cache *cache.Cache
	// Version is mixed into cache keys.
	Version string
}

// Result is the outcome of a Run.
type Result struct {
	Config     derive.Config
	Fragments  []string
	Excluded   []string
	Collisions []fragment.Collision
	// Procedures lists procedure names in application order.
	Procedures []string
	CacheKey   string
	CacheHit   bool
}

// Run executes the merge-then-derive pipeline. Fragments are always loaded
// and procedures always resolved, so a cache hit reports the same files,
// collisions and procedure order as a fresh derivation.
func Run(opts Options) (Result, error) {
	if opts.Registry == nil {
		opts.Registry = procs.Builtin()
	}
	fopts := fragment.Options{
		IncludesName: opts.IncludesName,
		ScriptsDir:   opts.ScriptsDir,
		Strict:       opts.Strict,
	}
	if opts.ScriptsPath != "" {
		fopts.SkipPaths = []string{opts.ScriptsPath}
	}

	manifests, err := discoverManifests(opts)
	if err != nil {
		return Result{}, err
	}
	loaded, err := fragment.Load(opts.Root, fopts)
	if err != nil {
		return Result{}, err
	}

	var chosen []derive.Procedure
	if len(manifests) == 0 {
		log.Debug("no procedure manifests found; applying built-in procedures")
		chosen, err = opts.Registry.Defaults()
	} else {
		chosen, err = manifest.Resolve(manifests, opts.Registry)
	}
	if err != nil {
		return Result{}, err
	}
	ordered, err := derive.Order(chosen)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Fragments:  loaded.Files,
		Excluded:   loaded.Excluded,
		Collisions: loaded.Collisions,
	}
	for _, p := range ordered {
		res.Procedures = append(res.Procedures, p.Name())
	}

	if opts.Cache != nil && opts.Cache.Enabled() {
		if res.CacheKey, err = cacheKey(opts, loaded.Files, manifests); err != nil {
			return Result{}, err
		}
		if payload, ok := opts.Cache.Get(res.CacheKey); ok {
			cfg, err := DecodeConfig(payload)
			if err == nil {
				log.WithField("key", res.CacheKey[:12]).Info("using cached derivation")
				res.Config = cfg
				res.CacheHit = true
				return res, nil
			}
			log.WithError(err).Warn("ignoring unreadable cache entry")
		}
	}

	cfg, err := derive.ApplyOrdered(loaded.Config, ordered)
	if err != nil {
		return Result{}, err
	}
	res.Config = cfg
	log.WithFields(log.Fields{
		"fragments":  len(loaded.Files),
		"procedures": len(ordered),
		"keys":       cfg.Len(),
	}).Debug("configuration materialized")

	if res.CacheKey != "" {
		store(opts.Cache, res.CacheKey, cfg)
	}
	return res, nil
}

// store writes cfg to the cache. Failures only skip caching.
func store(c *cache.Cache, key string, cfg derive.Config) {
	payload, err := EncodeConfig(cfg)
	if err != nil {
		log.WithError(err).Warn("derivation not cached")
		return
	}
	if err := c.Put(key, payload); err != nil {
		log.WithError(err).Warn("could not write cache entry")
	}
}

func discoverManifests(opts Options) ([]manifest.Manifest, error) {
	if opts.ScriptsPath != "" {
		return manifest.Discover(opts.ScriptsPath, "")
	}
	dirName := opts.ScriptsDir
	if dirName == "" {
		dirName = fragment.DefaultScriptsDir
	}
	return manifest.Discover(opts.Root, dirName)
}

func cacheKey(opts Options, files []string, manifests []manifest.Manifest) (string, error) {
	d := cache.NewDigest().
		Add("version", opts.Version).
		Add("strict", strconv.FormatBool(opts.Strict)).
		Add("procedures", strings.Join(opts.Registry.Names(), ","))
	for _, f := range files {
		if err := d.AddFile(f, filepath.Join(opts.Root, filepath.FromSlash(f))); err != nil {
			return "", err
		}
	}
	scriptsRoot := opts.Root
	if opts.ScriptsPath != "" {
		scriptsRoot = opts.ScriptsPath
	}
	for _, m := range manifests {
		if err := d.AddFile("manifest:"+m.Source, filepath.Join(scriptsRoot, filepath.FromSlash(m.Source))); err != nil {
			return "", errors.Wrap(err, "hashing manifests")
		}
	}
	return d.Sum(), nil
}
