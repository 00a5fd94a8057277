package resolve

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agentic-research/waypath/api"
	"github.com/agentic-research/waypath/internal/lineage"
)

// bootstrapRounds caps the directory bootstrap fixed point. Chains of
// directory templates referencing each other deeper than this stay
// partially resolved, mirroring the closure cap in lineage.
const bootstrapRounds = 8

// Filter constrains a query to records whose placeholder context binds
// a class to a specific instance. Class may be given bare ("Sample")
// or already prefixed ("@Sample").
type Filter struct {
	Class    string
	Instance string
}

// Resolver owns a fully built path index for one (configuration,
// metadata, working directory) triple. Construction performs the
// variable merge, directory bootstrap, ancestry closure, and index
// build eagerly; every query afterwards is a read-only projection.
type Resolver struct {
	Config *api.Config
	Meta   *api.Meta
	Cwd    string

	vars     map[string]string
	concrete map[string]string
	ancestry *lineage.Ancestry
	index    map[string][]api.Record
}

// New builds a resolver. An empty cwd falls back to the process
// working directory; relative template results are anchored there.
func New(cfg *api.Config, meta *api.Meta, cwd string) *Resolver {
	if cwd == "" {
		if wd, err := os.Getwd(); err == nil {
			cwd = wd
		} else {
			cwd = "."
		}
	}

	r := &Resolver{
		Config:   cfg,
		Meta:     meta,
		Cwd:      cwd,
		vars:     make(map[string]string, len(cfg.Variables)+len(meta.Keys)),
		concrete: make(map[string]string),
		index:    make(map[string][]api.Record),
	}
	for k, v := range cfg.Variables {
		r.vars[k] = v
	}
	for k, v := range meta.Keys {
		r.vars[k] = v
	}

	r.bootstrapDirs()
	r.ancestry = lineage.Compute(meta)
	r.buildIndex()
	return r
}

// expandVars expands $name tokens against the variable map with
// already-resolved concrete directories taking precedence.
func (r *Resolver) expandVars(s string) string {
	return dollarRe.ReplaceAllStringFunc(s, func(tok string) string {
		name := tok[1:]
		if v, ok := r.concrete[name]; ok {
			return v
		}
		if v, ok := r.vars[name]; ok {
			return v
		}
		return tok
	})
}

// expandAll expands $ tokens, then @ tokens from the given context.
func (r *Resolver) expandAll(s string, ctx map[string]string) string {
	return expandAt(r.expandVars(s), ctx)
}

// bootstrapDirs resolves every directory template that needs no
// per-instance context. Each pass expands unresolved templates against
// the variables plus the directories resolved so far; a result still
// holding an @ placeholder is recorded as a variable binding so
// dependent templates inherit the partial expansion, and is retried
// next pass. Fully resolved results are anchored and recorded as both
// concrete directories and variables.
func (r *Resolver) bootstrapDirs() {
	changed := true
	for round := 0; round < bootstrapRounds && changed; round++ {
		changed = false
		for _, name := range r.Config.DirOrder {
			if _, done := r.concrete[name]; done {
				continue
			}
			expanded := r.expandVars(r.Config.Dirs[name].Template)
			if strings.Contains(expanded, "@") {
				r.vars[name] = expanded
				continue
			}
			expanded = r.anchor(expanded)
			r.concrete[name] = expanded
			r.vars[name] = expanded
			changed = true
		}
	}
}

// anchor makes a path absolute against the working directory and
// normalizes it.
func (r *Resolver) anchor(path string) string {
	if !filepath.IsAbs(path) {
		return filepath.Join(r.Cwd, path)
	}
	return filepath.Clean(path)
}

// resolveDir expands a directory template in the given context.
// Returns ok=false when an @ placeholder survives expansion, meaning
// the directory is unreachable from this context.
func (r *Resolver) resolveDir(d *api.DirTemplate, ctx map[string]string) (string, bool) {
	s := r.expandAll(d.Template, ctx)
	if strings.Contains(s, "@") {
		return "", false
	}
	return r.anchor(s), true
}

// contextsFor returns the placeholder contexts a class level fans out
// to: one per instance of that class, or a single empty context when
// no class level is declared.
func (r *Resolver) contextsFor(classLevel string) []map[string]string {
	if classLevel == "" {
		return []map[string]string{{}}
	}
	var contexts []map[string]string
	for _, inst := range r.Meta.ByClass[classLevel] {
		if ctx := lineage.Context(r.Meta, inst); len(ctx) > 0 {
			contexts = append(contexts, ctx)
		}
	}
	return contexts
}

// buildIndex populates the per-file-key record lists. For each key,
// raw overrides from instance properties come first in instance
// declaration order, then template-derived records, one per reachable
// context. Every skip is silent: a missing directory reference or a
// context that cannot fully resolve simply contributes no record.
func (r *Resolver) buildIndex() {
	for _, fname := range r.Config.FileOrder {
		f := r.Config.Files[fname]
		d, ok := r.Config.Dirs[f.DirRef]
		if !ok {
			continue
		}

		for _, instName := range r.Meta.Order {
			inst := r.Meta.Instances[instName]
			override, ok := inst.Props[fname]
			if !ok {
				continue
			}
			ctx := lineage.Context(r.Meta, instName)
			if ctx == nil {
				ctx = map[string]string{}
			}
			r.index[fname] = append(r.index[fname], api.Record{
				Path:         r.anchor(r.expandVars(override)),
				Placeholders: ctx,
				ClassLevel:   f.ClassLevel,
				Source:       api.SourceRaw,
			})
		}

		for _, ctx := range r.contextsFor(f.ClassLevel) {
			dir, ok := r.resolveDir(d, ctx)
			if !ok {
				continue
			}
			leaf := r.expandAll(f.Template, ctx)
			if strings.Contains(leaf, "@") {
				continue
			}
			r.index[fname] = append(r.index[fname], api.Record{
				Path:         filepath.Join(dir, leaf),
				Placeholders: cloneContext(ctx),
				ClassLevel:   f.ClassLevel,
				Source:       api.SourceTemplate,
			})
		}
	}
}

// Get returns the paths recorded for fileKey that match every filter,
// in index order (raw before template, each in declaration order).
// source restricts provenance to api.SourceRaw or api.SourceTemplate;
// empty means either. Unknown keys yield an empty result.
func (r *Resolver) Get(fileKey, source string, filters ...Filter) []string {
	norm := normalizeFilters(filters)
	var out []string
	for _, rec := range r.index[fileKey] {
		if !matchesFilters(rec, norm) {
			continue
		}
		if source != "" && rec.Source != source {
			continue
		}
		out = append(out, rec.Path)
	}
	return out
}

// Records returns the full records for fileKey matching every filter.
// Unlike Get it offers no provenance filter; callers inspect the
// Source field themselves. Each returned record carries its own copy
// of the placeholder map, so callers cannot mutate the index.
func (r *Resolver) Records(fileKey string, filters ...Filter) []api.Record {
	norm := normalizeFilters(filters)
	var out []api.Record
	for _, rec := range r.index[fileKey] {
		if matchesFilters(rec, norm) {
			rec.Placeholders = cloneContext(rec.Placeholders)
			out = append(out, rec)
		}
	}
	return out
}

// Keys returns the file keys that produced at least one record, in
// configuration declaration order.
func (r *Resolver) Keys() []string {
	var keys []string
	for _, name := range r.Config.FileOrder {
		if len(r.index[name]) > 0 {
			keys = append(keys, name)
		}
	}
	return keys
}

// Ancestors returns every instance transitively reachable from inst
// through parent links.
func (r *Resolver) Ancestors(inst string) []string {
	return r.ancestry.Of(inst)
}

// AncestorOf reports whether ancestor is in inst's ancestry closure.
func (r *Resolver) AncestorOf(inst, ancestor string) bool {
	return r.ancestry.Contains(inst, ancestor)
}

// Vars returns a copy of the resolver's variable map after bootstrap,
// including bindings added for resolved and partially resolved
// directories.
func (r *Resolver) Vars() map[string]string {
	out := make(map[string]string, len(r.vars))
	for k, v := range r.vars {
		out[k] = v
	}
	return out
}

// Dirs returns a copy of the concrete directory map: every directory
// template that resolved without per-instance context.
func (r *Resolver) Dirs() map[string]string {
	out := make(map[string]string, len(r.concrete))
	for k, v := range r.concrete {
		out[k] = v
	}
	return out
}

func normalizeFilters(filters []Filter) map[string]string {
	norm := make(map[string]string, len(filters))
	for _, f := range filters {
		norm["@"+strings.TrimPrefix(f.Class, "@")] = f.Instance
	}
	return norm
}

func matchesFilters(rec api.Record, norm map[string]string) bool {
	for k, v := range norm {
		bound, ok := rec.Placeholders[k]
		if !ok || bound != v {
			return false
		}
	}
	return true
}

func cloneContext(ctx map[string]string) map[string]string {
	out := make(map[string]string, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
