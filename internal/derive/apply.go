package derive

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ApplyAll orders procs and applies them to cfg one after the other. The
// first failure aborts the run; no partially derived config is returned.
func ApplyAll(cfg Config, procs []Procedure) (Config, error) {
	ordered, err := Order(procs)
	if err != nil {
		return Config{}, err
	}
	return ApplyOrdered(cfg, ordered)
}

// ApplyOrdered applies procs to cfg exactly in the order given, for callers
// that already hold the result of Order.
func ApplyOrdered(cfg Config, procs []Procedure) (Config, error) {
	for _, p := range procs {
		next, err := Apply(cfg, p)
		if err != nil {
			return Config{}, err
		}
		cfg = next
	}
	return cfg, nil
}

// Apply runs a single procedure and checks that it produced every key it
// declared.
func Apply(cfg Config, p Procedure) (Config, error) {
	for _, k := range p.Requires() {
		if !cfg.Has(k) {
			return Config{}, wrapDerivation(p.Name(), errors.WithStack(&MissingKeyError{Key: k}))
		}
	}
	out, err := p.Apply(cfg)
	if err != nil {
		return Config{}, wrapDerivation(p.Name(), err)
	}
	for _, k := range p.Provides() {
		if !out.Has(k) {
			return Config{}, wrapDerivation(p.Name(), errors.Errorf("declared key %q was not produced", k))
		}
	}
	log.WithFields(log.Fields{
		"procedure": p.Name(),
		"keys":      out.Len(),
	}).Debug("procedure applied")
	return out, nil
}

func wrapDerivation(name string, err error) error {
	var de *DerivationError
	if errors.As(err, &de) {
		return err
	}
	return errors.WithStack(&DerivationError{Procedure: name, Err: err})
}
