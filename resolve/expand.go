// Package resolve turns a parsed pipeline configuration and run
// metadata into an index of concrete absolute paths, one list of
// records per declared file key, and answers filtered queries over it.
package resolve

import "regexp"

var (
	dollarRe = regexp.MustCompile(`\$([A-Za-z_]\w*)`)
	atRe     = regexp.MustCompile(`@([A-Za-z_]\w*)`)
)

// expandDollars substitutes $name tokens from vars. Tokens with no
// binding are left verbatim; an unresolved token is not an error.
func expandDollars(s string, vars map[string]string) string {
	return dollarRe.ReplaceAllStringFunc(s, func(tok string) string {
		if v, ok := vars[tok[1:]]; ok {
			return v
		}
		return tok
	})
}

// expandAt substitutes @Name tokens from a placeholder context keyed
// by "@Name". Tokens absent from the context are left verbatim.
func expandAt(s string, ctx map[string]string) string {
	return atRe.ReplaceAllStringFunc(s, func(tok string) string {
		if v, ok := ctx[tok]; ok {
			return v
		}
		return tok
	})
}
