package output

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/dshills/rvconf/internal/derive"
)

// YAMLWriter outputs the config as a YAML mapping.
type YAMLWriter struct{}

func (y *YAMLWriter) Ext() string { return ".yaml" }

func (y *YAMLWriter) Write(w io.Writer, cfg derive.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Map()); err != nil {
		return errors.Wrap(err, "writing YAML")
	}
	return enc.Close()
}
