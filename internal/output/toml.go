package output

import (
	"io"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/dshills/rvconf/internal/derive"
)

// TOMLWriter outputs the config as TOML key/value pairs.
type TOMLWriter struct{}

func (t *TOMLWriter) Ext() string { return ".toml" }

func (t *TOMLWriter) Write(w io.Writer, cfg derive.Config) error {
	if err := toml.NewEncoder(w).Encode(cfg.Map()); err != nil {
		return errors.Wrap(err, "writing TOML")
	}
	return nil
}
