package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/dshills/rvconf/internal/derive"
)

// JSONWriter outputs the config as a flat JSON object with sorted keys.
type JSONWriter struct{}

func (j *JSONWriter) Ext() string { return ".json" }

func (j *JSONWriter) Write(w io.Writer, cfg derive.Config) error {
	data, err := json.MarshalIndent(cfg.Map(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling JSON")
	}
	_, err = w.Write(data)
	if err != nil {
		return errors.Wrap(err, "writing JSON")
	}
	_, err = fmt.Fprintln(w)
	return err
}
