package graph

import "testing"

func TestValidateDetectsUnresolvedDependency(t *testing.T) {
	g := New()
	g.AddNode(SchemaNode("app"))
	g.AddEdge(TableNode("app.orders"), SchemaNode("app"), 1.0)
	g.AddEdge(TableNode("app.orders"), TableNode("app.customers"), 1.1) // never added

	result := g.Validate()
	if result.Status != UnresolvedDependencies {
		t.Fatalf("expected UnresolvedDependencies, got %v", result.Status)
	}
	if len(result.Unresolved) != 1 || result.Unresolved[0] != TableNode("app.customers") {
		t.Fatalf("unexpected unresolved set: %+v", result.Unresolved)
	}
}

func TestValidateDetectsSelfCycle(t *testing.T) {
	g := New()
	g.AddEdge(TableNode("a"), TableNode("a"), 1.0)

	result := g.Validate()
	if result.Status != CircularReference {
		t.Fatalf("expected CircularReference, got %v", result.Status)
	}
}

func TestTopologicalSortBreaksTiesByWeightThenID(t *testing.T) {
	g := New()
	g.AddNode(SchemaNode("public"))
	g.AddEdge(TableNode("b"), SchemaNode("public"), 2.0)
	g.AddEdge(TableNode("a"), SchemaNode("public"), 1.0)

	order := g.TopologicalSort()
	pos := map[string]int{}
	for i, n := range order {
		pos[n.ID()] = i
	}
	if pos[TableNode("a").ID()] >= pos[TableNode("b").ID()] {
		t.Fatalf("expected a (lighter weight) before b, order=%v", order)
	}
}

func TestTopologicalSortOrdersDependenciesFirst(t *testing.T) {
	g := New()
	g.AddEdge(TableNode("orders"), TableNode("customers"), 1.1)
	g.AddNode(TableNode("customers"))

	order := g.TopologicalSort()
	pos := map[string]int{}
	for i, n := range order {
		pos[n.ID()] = i
	}
	if pos[TableNode("customers").ID()] >= pos[TableNode("orders").ID()] {
		t.Fatalf("expected customers before orders, order=%v", order)
	}
}
