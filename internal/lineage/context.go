package lineage

import "github.com/agentic-research/waypath/api"

// Context builds the placeholder mapping for one instance: its own
// class first, then a breadth-first walk over parents, so that the
// closest ancestor carrying a class always wins. A class already
// assigned is never overwritten. Returns nil for unknown instances.
func Context(meta *api.Meta, inst string) map[string]string {
	obj, ok := meta.Instances[inst]
	if !ok {
		return nil
	}

	ctx := make(map[string]string)
	if obj.Class != "" {
		ctx["@"+obj.Class] = inst
	}

	queue := append([]string(nil), obj.Parents...)
	seen := make(map[string]bool)
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if seen[p] {
			continue
		}
		seen[p] = true
		pobj, ok := meta.Instances[p]
		if !ok {
			continue
		}
		if pobj.Class != "" {
			if _, taken := ctx["@"+pobj.Class]; !taken {
				ctx["@"+pobj.Class] = p
			}
		}
		queue = append(queue, pobj.Parents...)
	}
	return ctx
}
