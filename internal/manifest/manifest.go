package manifest

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/dshills/rvconf/internal/derive"
)

// Manifest selects one registered procedure.
type Manifest struct {
	// Source is the manifest path relative to the discovery root.
	Source    string         `yaml:"-"`
	Procedure string         `yaml:"procedure"`
	Params    map[string]any `yaml:"params,omitempty"`
}

// ParseError reports a manifest that could not be read or decoded.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing manifest %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func isManifest(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Discover loads manifests under root. When dirName is set, only files inside
// a directory of that name are considered; otherwise every YAML file under
// root is a manifest. Manifests are returned sorted by path.
func Discover(root, dirName string) ([]Manifest, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() || !isManifest(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if dirName != "" && !inDir(rel, dirName) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", root)
	}
	sort.Strings(paths)

	manifests := make([]Manifest, 0, len(paths))
	for _, rel := range paths {
		m, err := LoadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, errors.WithStack(&ParseError{File: rel, Err: err})
		}
		m.Source = rel
		log.WithFields(log.Fields{"file": rel, "procedure": m.Procedure}).Debug("found procedure manifest")
		manifests = append(manifests, m)
	}
	return manifests, nil
}

func inDir(rel, dirName string) bool {
	parts := strings.Split(rel, "/")
	for _, p := range parts[:len(parts)-1] {
		if p == dirName {
			return true
		}
	}
	return false
}

// LoadFile decodes a single manifest. Unknown fields are rejected.
func LoadFile(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	return Decode(data)
}

// Decode parses manifest YAML.
func Decode(data []byte) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && err != io.EOF {
		return Manifest{}, err
	}
	return m, nil
}

// Resolve instantiates the procedures named by manifests from r. A manifest
// naming no procedure or an unregistered one fails with a
// *derive.MissingCapabilityError.
func Resolve(manifests []Manifest, r *derive.Registry) ([]derive.Procedure, error) {
	procs := make([]derive.Procedure, 0, len(manifests))
	for _, m := range manifests {
		p, err := r.New(m.Source, m.Procedure, derive.Params(m.Params))
		if err != nil {
			return nil, err
		}
		procs = append(procs, p)
	}
	return procs, nil
}
