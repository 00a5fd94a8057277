package resolve

import (
	"fmt"
	"io"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/agentic-research/waypath/api"
	"github.com/agentic-research/waypath/internal/grammar"
)

// ParseConfig parses pipeline configuration text. extra seeds
// variables at lowest precedence.
func ParseConfig(text string, extra map[string]string) *api.Config {
	return grammar.ParseConfig(text, extra)
}

// ParseMeta parses run metadata text.
func ParseMeta(text string) *api.Meta {
	return grammar.ParseMeta(text)
}

// LoadConfig reads and parses a pipeline configuration file from fsys.
// Reading is the one fallible step: an unreadable file surfaces as an
// error instead of an empty configuration.
func LoadConfig(fsys billy.Filesystem, path string, extra map[string]string) (*api.Config, error) {
	text, err := readFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return grammar.ParseConfig(text, extra), nil
}

// LoadMeta reads and parses a run metadata file from fsys.
func LoadMeta(fsys billy.Filesystem, path string) (*api.Meta, error) {
	text, err := readFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("load meta %s: %w", path, err)
	}
	return grammar.ParseMeta(text), nil
}

// LoadConfigFile is LoadConfig against the host filesystem. Relative
// paths resolve against the process working directory.
func LoadConfigFile(path string, extra map[string]string) (*api.Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return LoadConfig(osfs.New("/"), abs, extra)
}

// LoadMetaFile is LoadMeta against the host filesystem. Relative paths
// resolve against the process working directory.
func LoadMetaFile(path string) (*api.Meta, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("load meta %s: %w", path, err)
	}
	return LoadMeta(osfs.New("/"), abs)
}

// readFile slurps a file as raw bytes. The content is taken as-is:
// both input languages drop lines they cannot parse, so no decoding
// validation happens here.
func readFile(fsys billy.Filesystem, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	b, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
