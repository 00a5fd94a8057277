package grammar

import (
	"regexp"
	"strings"

	"github.com/agentic-research/waypath/api"
)

// Configuration line shapes, in match priority order. The variable
// shape cannot swallow the others because its name must sit directly
// before the '='.
var (
	cfgVarRe   = regexp.MustCompile(`^\s*([A-Za-z_]\w*)\s*=\s*(.*?)\s*$`)
	cfgClassRe = regexp.MustCompile(`^\s*class\s+([A-Za-z_]\w*)\s*=\s*(.+?)(?:\s+parent\s+([A-Za-z_]\w*))?\s*$`)
	cfgDirRe   = regexp.MustCompile(`^\s*(?:\w+\s+)*mkdir\s+path\s+([A-Za-z_]\w*)\s*=\s*(\S+)(?:.*?\bclass_level\s+([A-Za-z_]\w*))?.*$`)
	cfgFileRe  = regexp.MustCompile(`^\s*(?:\w+\s+)*path\s+file\s+([A-Za-z_]\w*)\s*=\s*(\S+)\s+dir\s+([A-Za-z_]\w*)(?:.*?\bclass_level\s+([A-Za-z_]\w*))?.*$`)
)

// ParseConfig parses pipeline configuration text. extra seeds the
// variable map at lowest precedence, so declarations in the text win.
// Re-declaring a name in the same category overwrites the previous
// definition; unrecognized lines are ignored.
func ParseConfig(text string, extra map[string]string) *api.Config {
	cfg := &api.Config{
		Variables:    make(map[string]string),
		Classes:      make(map[string]*api.ClassDef),
		ChildClasses: make(map[string][]string),
		Dirs:         make(map[string]*api.DirTemplate),
		Files:        make(map[string]*api.FileTemplate),
	}
	for k, v := range extra {
		cfg.Variables[k] = v
	}

	var classOrder []string

	for _, raw := range strings.Split(text, "\n") {
		line := cleanLine(raw)
		if line == "" {
			continue
		}

		if m := cfgVarRe.FindStringSubmatch(line); m != nil {
			cfg.Variables[m[1]] = m[2]
			continue
		}

		if m := cfgClassRe.FindStringSubmatch(line); m != nil {
			name := m[1]
			if _, ok := cfg.Classes[name]; !ok {
				classOrder = append(classOrder, name)
			}
			cfg.Classes[name] = &api.ClassDef{
				Name:    name,
				Display: strings.TrimSpace(m[2]),
				Parent:  m[3],
			}
			continue
		}

		if m := cfgDirRe.FindStringSubmatch(line); m != nil {
			name := m[1]
			if _, ok := cfg.Dirs[name]; !ok {
				cfg.DirOrder = append(cfg.DirOrder, name)
			}
			cfg.Dirs[name] = &api.DirTemplate{
				Name:       name,
				Template:   m[2],
				ClassLevel: m[3],
			}
			continue
		}

		if m := cfgFileRe.FindStringSubmatch(line); m != nil {
			name := m[1]
			if _, ok := cfg.Files[name]; !ok {
				cfg.FileOrder = append(cfg.FileOrder, name)
			}
			cfg.Files[name] = &api.FileTemplate{
				Name:       name,
				Template:   m[2],
				DirRef:     m[3],
				ClassLevel: m[4],
			}
			continue
		}
	}

	for _, name := range classOrder {
		if parent := cfg.Classes[name].Parent; parent != "" {
			cfg.ChildClasses[parent] = append(cfg.ChildClasses[parent], name)
		}
	}

	return cfg
}
