package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dshills/rvconf/internal/derive"
)

// TextWriter outputs one aligned "key = value" line per key.
type TextWriter struct{}

func (t *TextWriter) Ext() string { return ".txt" }

func (t *TextWriter) Write(w io.Writer, cfg derive.Config) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, k := range cfg.Keys() {
		v, _ := cfg.Get(k)
		if _, err := fmt.Fprintf(tw, "%s\t= %s\n", k, FormatValue(v)); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// FormatValue renders a config value for display. Floats use the shortest
// representation; strings are quoted.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = FormatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}
