package grammar

import (
	"regexp"
	"strings"

	"github.com/agentic-research/waypath/api"
)

// Metadata line shapes. The generic property shape is broad enough to
// match class and parent assignments, so it must be tried last.
var (
	metaConfigRe = regexp.MustCompile(`^\s*!config\s+(\S+)\s*$`)
	metaKeyRe    = regexp.MustCompile(`^\s*!key\s+([A-Za-z_]\w*)\s+(.*?)\s*$`)
	metaClassRe  = regexp.MustCompile(`^\s*([^\s#]+)\s+class\s+([A-Za-z_]\w*)\s*$`)
	metaParentRe = regexp.MustCompile(`^\s*([^\s#]+)\s+parent\s+([^\s#]+)\s*$`)
	metaPropRe   = regexp.MustCompile(`^\s*([^\s#]+)\s+([A-Za-z_]\w*)\s+(.*?)\s*$`)
)

// ParseMeta parses run metadata text. Instances are created lazily on
// first mention and accumulate class, parents, and properties across
// lines; unrecognized lines are ignored.
func ParseMeta(text string) *api.Meta {
	meta := &api.Meta{
		Keys:      make(map[string]string),
		Instances: make(map[string]*api.Instance),
		ByClass:   make(map[string][]string),
	}

	for _, raw := range strings.Split(text, "\n") {
		line := cleanLine(raw)
		if line == "" {
			continue
		}

		if m := metaConfigRe.FindStringSubmatch(line); m != nil {
			meta.ConfigPath = m[1]
			continue
		}

		if m := metaKeyRe.FindStringSubmatch(line); m != nil {
			meta.Keys[m[1]] = m[2]
			continue
		}

		if m := metaClassRe.FindStringSubmatch(line); m != nil {
			instance(meta, m[1]).Class = m[2]
			continue
		}

		if m := metaParentRe.FindStringSubmatch(line); m != nil {
			inst := instance(meta, m[1])
			inst.Parents = append(inst.Parents, m[2])
			continue
		}

		if m := metaPropRe.FindStringSubmatch(line); m != nil {
			instance(meta, m[1]).Props[m[2]] = m[3]
			continue
		}
	}

	for _, name := range meta.Order {
		if class := meta.Instances[name].Class; class != "" {
			meta.ByClass[class] = append(meta.ByClass[class], name)
		}
	}

	return meta
}

// instance returns the named instance, creating it on first mention.
func instance(meta *api.Meta, name string) *api.Instance {
	if inst, ok := meta.Instances[name]; ok {
		return inst
	}
	inst := &api.Instance{Name: name, Props: make(map[string]string)}
	meta.Instances[name] = inst
	meta.Order = append(meta.Order, name)
	return inst
}
