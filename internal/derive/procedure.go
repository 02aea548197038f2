package derive

import (
	"sort"

	"github.com/pkg/errors"
)

// Procedure derives new keys from a Config.
//
// Requires lists keys read, Provides keys written and Consumes raw keys the
// procedure deletes once it has replaced them. Procedures whose key sets
// depend on the config contents may return nil for the dynamic part.
type Procedure interface {
	Name() string
	Requires() []string
	Provides() []string
	Consumes() []string
	Apply(Config) (Config, error)
}

// Params carries per-procedure settings, usually decoded from a manifest.
type Params map[string]any

// String returns the string parameter under key, or def when absent.
func (p Params) String(key, def string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Errorf("parameter %q: want string, got %T", key, v)
	}
	return s, nil
}

// Factory builds a Procedure from its parameters.
type Factory func(Params) (Procedure, error)

// Descriptor documents a registered procedure.
type Descriptor struct {
	Name    string
	Summary string
	New     Factory
}

// Registry holds the statically registered procedures, in registration order.
type Registry struct {
	order  []string
	byName map[string]Descriptor
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Descriptor)}
}

// Register adds d. Registering the same name twice is an error.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" || d.New == nil {
		return errors.Errorf("invalid procedure descriptor %q", d.Name)
	}
	if _, dup := r.byName[d.Name]; dup {
		return errors.Errorf("procedure %q already registered", d.Name)
	}
	r.byName[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// New instantiates the procedure registered under name. source identifies
// where the request came from and is reported on failure.
func (r *Registry) New(source, name string, params Params) (Procedure, error) {
	if name == "" {
		return nil, errors.WithStack(&MissingCapabilityError{Source: source})
	}
	d, ok := r.byName[name]
	if !ok {
		return nil, errors.WithStack(&MissingCapabilityError{Source: source, Procedure: name})
	}
	p, err := d.New(params)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: configuring %s", source, name)
	}
	return p, nil
}

// Defaults instantiates every registered procedure with empty parameters.
func (r *Registry) Defaults() ([]Procedure, error) {
	procs := make([]Procedure, 0, len(r.order))
	for _, name := range r.order {
		p, err := r.New("builtin", name, nil)
		if err != nil {
			return nil, err
		}
		procs = append(procs, p)
	}
	return procs, nil
}

// Describe returns the descriptors sorted by name.
func (r *Registry) Describe() []Descriptor {
	out := make([]Descriptor, 0, len(r.byName))
	for _, d := range r.byName {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
