package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplateTokens(t *testing.T) {
	d := &DirTemplate{Name: "outdir", Template: "$base/@Project/@Sample/@Project"}
	assert.Equal(t, []string{"Project", "Sample"}, d.Tokens(),
		"tokens are deduplicated in first-occurrence order")

	f := &FileTemplate{Name: "summary_file", Template: "summary.txt"}
	assert.Empty(t, f.Tokens())

	f = &FileTemplate{Name: "stats_file", Template: "@Cohort.stats.tsv"}
	assert.Equal(t, []string{"Cohort"}, f.Tokens())
}
