package output

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/dshills/rvconf/internal/derive"
)

// Writer writes a config in a specific format.
type Writer interface {
	Write(w io.Writer, cfg derive.Config) error
	// Ext is the file extension used when writing into a directory.
	Ext() string
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "yaml":
		return &YAMLWriter{}, nil
	case "toml":
		return &TOMLWriter{}, nil
	default:
		return nil, errors.Errorf("unsupported output format: %s", format)
	}
}

// BaseName is the file name, without extension, used when the output path is
// a directory.
const BaseName = "config"

// WriteConfig writes cfg to outPath, or to stdout when outPath is empty. When
// outPath is an existing directory or ends in a path separator, the file is
// created inside it as BaseName plus the format extension. It returns the
// path written, or "" for stdout.
func WriteConfig(cfg derive.Config, format, outPath string, stdout io.Writer) (string, error) {
	writer, err := GetWriter(format)
	if err != nil {
		return "", err
	}
	if outPath == "" {
		return "", writer.Write(stdout, cfg)
	}

	path := outPath
	if isDirPath(outPath) {
		if err := os.MkdirAll(outPath, 0o755); err != nil {
			return "", errors.Wrap(err, "creating output directory")
		}
		path = filepath.Join(outPath, BaseName+writer.Ext())
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, "creating output directory")
	}

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating output file")
	}
	defer f.Close()
	if err := writer.Write(f, cfg); err != nil {
		return "", err
	}
	return path, f.Close()
}

func isDirPath(p string) bool {
	if strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(os.PathSeparator)) {
		return true
	}
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
