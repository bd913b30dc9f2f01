package loader

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"golang.org/x/term"

	"github.com/rivaiamin/ddl-compare/parser"
	"github.com/rivaiamin/ddl-compare/schema"
	"github.com/rivaiamin/ddl-compare/validator"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

var stdin = os.Stdin

// ReadSource returns the text at path. "-" reads standard input, which
// must be piped. Files ending in .xz are decompressed.
func ReadSource(path string) (string, error) {
	var r io.Reader
	if path == Stdin {
		if term.IsTerminal(int(stdin.Fd())) {
			return "", fmt.Errorf("stdin is not piped")
		}
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(r)
		if err != nil {
			return "", fmt.Errorf("decompressing %s: %w", path, err)
		}
		r = xr
	}

	buf, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(buf), nil
}

// LoadSchema reads path and returns its schema. YAML files are snapshots
// written by SaveSnapshot, anything else is declaration text.
func LoadSchema(path string) (*schema.Schema, error) {
	content, err := ReadSource(path)
	if err != nil {
		return nil, err
	}

	var s *schema.Schema
	if IsSnapshot(path) {
		s, err = LoadSnapshot([]byte(content))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	} else {
		if err := validator.ValidateDDL(content); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		s = parser.Parse(content)
	}

	slog.Debug("schema loaded", "path", path, "tables", len(s.Tables))
	return s, nil
}

// IsSnapshot reports whether path names a YAML snapshot, compressed or not.
func IsSnapshot(path string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".xz"))) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
