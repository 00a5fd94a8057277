package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/waypath/api"
)

// testMeta assembles an api.Meta the way the metadata parser would,
// with declaration order and the per-class index filled in.
func testMeta(instances ...*api.Instance) *api.Meta {
	meta := &api.Meta{
		Keys:      make(map[string]string),
		Instances: make(map[string]*api.Instance),
		ByClass:   make(map[string][]string),
	}
	for _, inst := range instances {
		if inst.Props == nil {
			inst.Props = make(map[string]string)
		}
		meta.Instances[inst.Name] = inst
		meta.Order = append(meta.Order, inst.Name)
	}
	for _, name := range meta.Order {
		if class := meta.Instances[name].Class; class != "" {
			meta.ByClass[class] = append(meta.ByClass[class], name)
		}
	}
	return meta
}

func TestCompute_Transitivity(t *testing.T) {
	meta := testMeta(
		&api.Instance{Name: "a", Parents: []string{"b"}},
		&api.Instance{Name: "b", Parents: []string{"c"}},
		&api.Instance{Name: "c"},
	)
	a := Compute(meta)

	assert.True(t, a.Contains("a", "b"))
	assert.True(t, a.Contains("a", "c"), "grandparent must be in the closure")
	assert.True(t, a.Contains("b", "c"))
	assert.False(t, a.Contains("c", "a"))
	assert.ElementsMatch(t, []string{"b", "c"}, a.Of("a"))
	assert.Empty(t, a.Of("c"))
}

func TestCompute_MultipleParentsMerge(t *testing.T) {
	meta := testMeta(
		&api.Instance{Name: "child", Parents: []string{"p1", "p2"}},
		&api.Instance{Name: "p1", Parents: []string{"gp"}},
		&api.Instance{Name: "p2"},
		&api.Instance{Name: "gp"},
	)
	a := Compute(meta)
	assert.ElementsMatch(t, []string{"p1", "p2", "gp"}, a.Of("child"))
}

func TestCompute_CycleTerminates(t *testing.T) {
	meta := testMeta(
		&api.Instance{Name: "a", Parents: []string{"b"}},
		&api.Instance{Name: "b", Parents: []string{"a"}},
	)
	a := Compute(meta)

	// The bounded fixed point stops; both ends see the whole cycle.
	assert.True(t, a.Contains("a", "b"))
	assert.True(t, a.Contains("b", "a"))
	assert.True(t, a.Contains("a", "a"))
}

func TestCompute_UndeclaredParent(t *testing.T) {
	meta := testMeta(&api.Instance{Name: "a", Parents: []string{"ghost"}})
	a := Compute(meta)

	require.True(t, a.Contains("a", "ghost"))
	assert.Empty(t, a.Of("ghost"), "undeclared instances have no ancestors")
	assert.Empty(t, a.Of("never-mentioned"))
	assert.False(t, a.Contains("never-mentioned", "a"))
}
