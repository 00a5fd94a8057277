package api

import "regexp"

// Record provenance values. Raw records come from an instance property
// that names a file key directly; template records are derived from a
// file template joined with its resolved directory.
const (
	SourceRaw      = "raw"
	SourceTemplate = "template"
)

var placeholderRe = regexp.MustCompile(`@([A-Za-z_]\w*)`)

// Config is the parsed pipeline configuration: variables, the class
// forest, and the directory and file templates that reference them.
type Config struct {
	// Variables maps bare names to string values, usable as $name in templates.
	Variables map[string]string `json:"variables,omitempty"`
	// Classes maps class name to its definition.
	Classes map[string]*ClassDef `json:"classes,omitempty"`
	// ChildClasses maps a class to its direct child classes, in declaration order.
	ChildClasses map[string][]string `json:"child_classes,omitempty"`
	// Dirs maps directory template name to its definition.
	Dirs map[string]*DirTemplate `json:"dirs,omitempty"`
	// Files maps file key to its template definition.
	Files map[string]*FileTemplate `json:"files,omitempty"`
	// DirOrder and FileOrder record first-declaration order, which drives
	// deterministic bootstrap and index iteration.
	DirOrder  []string `json:"-"`
	FileOrder []string `json:"-"`
}

// ClassDef is one node in the single-inheritance class forest.
type ClassDef struct {
	Name    string `json:"name"`
	Display string `json:"display"`
	Parent  string `json:"parent,omitempty"`
}

// DirTemplate declares a parameterized directory path.
type DirTemplate struct {
	Name     string `json:"name"`
	Template string `json:"template"`
	// ClassLevel, if set, names the class whose instances parameterize
	// this directory.
	ClassLevel string `json:"class_level,omitempty"`
}

// Tokens returns the @-placeholder names referenced by the template,
// deduplicated, in first-occurrence order.
func (d *DirTemplate) Tokens() []string {
	return placeholderTokens(d.Template)
}

// FileTemplate declares a parameterized file name placed inside a
// directory template referenced by name.
type FileTemplate struct {
	Name     string `json:"name"`
	Template string `json:"template"`
	// DirRef names the DirTemplate this file lives in. If no such
	// directory is declared the file template is unusable.
	DirRef     string `json:"dir"`
	ClassLevel string `json:"class_level,omitempty"`
}

// Tokens returns the @-placeholder names referenced by the template.
func (f *FileTemplate) Tokens() []string {
	return placeholderTokens(f.Template)
}

func placeholderTokens(s string) []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, m := range placeholderRe.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			tokens = append(tokens, m[1])
		}
	}
	return tokens
}

// Instance is a concrete named object declared in the run metadata.
// Fields accumulate across metadata lines: class assignment, parent
// links, and properties may arrive in any order.
type Instance struct {
	Name    string            `json:"name"`
	Class   string            `json:"class,omitempty"`
	Parents []string          `json:"parents,omitempty"`
	Props   map[string]string `json:"props,omitempty"`
}

// Meta is the parsed run metadata.
type Meta struct {
	// Keys are !key entries; they overlay Config.Variables in the
	// resolver's variable map.
	Keys map[string]string `json:"keys,omitempty"`
	// ConfigPath is the informational !config reference, if any.
	ConfigPath string `json:"config_path,omitempty"`
	// Instances maps instance name to its accumulated definition.
	Instances map[string]*Instance `json:"instances,omitempty"`
	// Order is first-mention order of instances; raw-override records
	// are emitted in this order.
	Order []string `json:"-"`
	// ByClass maps class name to its instances in first-mention order.
	ByClass map[string][]string `json:"by_class,omitempty"`
}

// Record is one fully resolved index entry: a concrete absolute path
// together with the placeholder context that produced it.
type Record struct {
	Path string `json:"path"`
	// Placeholders maps "@Class" to the instance name bound for that
	// class in the context that produced this record.
	Placeholders map[string]string `json:"placeholders"`
	ClassLevel   string            `json:"class_level,omitempty"`
	Source       string            `json:"source"`
}
