package pipeline

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/dshills/rvconf/internal/derive"
)

// EncodeConfig serializes cfg for the cache. Configs holding NaN or
// infinite floats have no JSON form and are rejected.
func EncodeConfig(cfg derive.Config) ([]byte, error) {
	m := cfg.Map()
	for k, v := range m {
		tagged, err := tagFloats(v)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding config key %q", k)
		}
		m[k] = tagged
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "encoding config")
	}
	return data, nil
}

// tagFloats writes floats with a fractional or exponent part so they are not
// mistaken for integers when decoded.
func tagFloats(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, errors.Errorf("non-finite float %v", x)
		}
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return json.Number(s), nil
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			t, err := tagFloats(e)
			if err != nil {
				return nil, err
			}
			m[k] = t
		}
		return m, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			t, err := tagFloats(e)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	default:
		return v, nil
	}
}

// DecodeConfig restores a config written by EncodeConfig. Numbers
// without a fraction or exponent come back as int64, all others as float64.
func DecodeConfig(data []byte) (derive.Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return derive.Config{}, errors.Wrap(err, "decoding cached config")
	}
	out, err := restore(m)
	if err != nil {
		return derive.Config{}, err
	}
	return derive.NewConfig(out.(map[string]any)), nil
}

func restore(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return nil, errors.Wrapf(err, "number %s", x)
		}
		return f, nil
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			r, err := restore(e)
			if err != nil {
				return nil, err
			}
			m[k] = r
		}
		return m, nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			r, err := restore(e)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return v, nil
	}
}
