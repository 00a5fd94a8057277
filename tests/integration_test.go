package tests

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/agentic-research/waypath/api"
	"github.com/agentic-research/waypath/internal/store"
	"github.com/agentic-research/waypath/resolve"
)

const pipelineConfig = `
# validation pipeline
lap_home = /pipeline
class Project = Project
class Sample = Sample parent Project
class Cohort = Cohort parent Sample

sortable mkdir path project_dir = $lap_home/projects/@Project
sortable mkdir path sample_dir = $project_dir/@Sample class_level Sample

short cut path file summary_file = summary.txt dir sample_dir class_level Sample
short cut path file cohort_stats_file = @Cohort.stats.tsv dir sample_dir class_level Cohort
path file manifest_file = manifest.txt dir project_dir class_level Project
`

const runMeta = `
!config /pipeline/config/validation.cfg
!key lap_home /humgen/lap   # overrides the config variable

pigean class Project
s1 class Sample
s1 parent pigean
s2 class Sample
s2 parent pigean
c1 class Cohort
c1 parent s1
s1 summary_file /overrides/s1-summary.txt
`

// fixture writes the configuration and metadata to disk and builds a
// resolver through the file loaders, the way the CLI does.
func fixture(t *testing.T) *resolve.Resolver {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "validation.cfg")
	metaPath := filepath.Join(dir, "validation.prod.meta")
	require.NoError(t, os.WriteFile(cfgPath, []byte(pipelineConfig), 0o644))
	require.NoError(t, os.WriteFile(metaPath, []byte(runMeta), 0o644))

	cfg, err := resolve.LoadConfigFile(cfgPath, nil)
	require.NoError(t, err)
	meta, err := resolve.LoadMetaFile(metaPath)
	require.NoError(t, err)

	assert.Equal(t, "/pipeline/config/validation.cfg", meta.ConfigPath)
	return resolve.New(cfg, meta, "/work")
}

func TestEndToEnd_Resolution(t *testing.T) {
	r := fixture(t)

	// The metadata !key wins over the configuration variable.
	assert.Equal(t, "/humgen/lap", r.Vars()["lap_home"])

	// Sample-level fan-out, raw override first.
	records := r.Records("summary_file")
	require.Len(t, records, 3)
	assert.Equal(t, api.SourceRaw, records[0].Source)
	assert.Equal(t, "/overrides/s1-summary.txt", records[0].Path)
	assert.Equal(t, api.SourceTemplate, records[1].Source)
	assert.Equal(t, "/humgen/lap/projects/pigean/s1/summary.txt", records[1].Path)
	assert.Equal(t, "/humgen/lap/projects/pigean/s2/summary.txt", records[2].Path)

	// Cohort context resolves @Sample through the parent chain.
	cohort := r.Records("cohort_stats_file")
	require.Len(t, cohort, 1)
	assert.Equal(t, "/humgen/lap/projects/pigean/s1/c1.stats.tsv", cohort[0].Path)
	assert.Equal(t, map[string]string{
		"@Cohort":  "c1",
		"@Sample":  "s1",
		"@Project": "pigean",
	}, cohort[0].Placeholders)

	// Filtering, bare or @-prefixed.
	assert.Equal(t,
		[]string{"/humgen/lap/projects/pigean/s2/summary.txt"},
		r.Get("summary_file", "", resolve.Filter{Class: "Sample", Instance: "s2"}))
	assert.Equal(t,
		r.Get("summary_file", "", resolve.Filter{Class: "Sample", Instance: "s1"}),
		r.Get("summary_file", "", resolve.Filter{Class: "@Sample", Instance: "s1"}))

	// Ancestry closure is transitive.
	assert.True(t, r.AncestorOf("c1", "pigean"))

	assert.Equal(t, []string{"summary_file", "cohort_stats_file", "manifest_file"}, r.Keys())
}

func TestEndToEnd_SQLiteExport(t *testing.T) {
	r := fixture(t)
	dbPath := filepath.Join(t.TempDir(), "index.db")

	w, err := store.NewWriter(dbPath)
	require.NoError(t, err)
	total := 0
	for _, key := range r.Keys() {
		for _, rec := range r.Records(key) {
			require.NoError(t, w.Add(key, rec))
			total++
		}
	}
	require.NoError(t, w.Close())

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM path_records`).Scan(&count))
	assert.Equal(t, total, count)

	var path string
	require.NoError(t, db.QueryRow(`
		SELECT path FROM path_records
		WHERE file_key = ? AND source = ? ORDER BY seq`,
		"summary_file", api.SourceRaw).Scan(&path))
	assert.Equal(t, "/overrides/s1-summary.txt", path)
}
