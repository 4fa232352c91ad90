// Package graph implements the dependency graph of spec.md §4.3: nodes are
// schema objects, edges carry a weight meaning "source depends on
// destination with cost w", and the graph knows how to validate itself and
// produce a deterministic topological order.
package graph

import "fmt"

// NodeKind tags the kind of schema object a Node refers to.
type NodeKind int

const (
	NodeSchema NodeKind = iota
	NodeExtension
	NodeType
	NodeTable
	NodeColumn
	NodeConstraint
	NodeFunction
)

var nodeKindNames = [...]string{
	"Schema", "Extension", "Type", "Table", "Column", "Constraint", "Function",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// Node is a tagged reference into the schema model. Key holds the node's
// identity within its kind: a bare name for Schema/Extension, a
// "schema.local" qname for Type/Table/Function, and a dotted path
// ("schema.table.column" / "schema.table.constraint") for Column/Constraint.
// Nodes carry no back-pointers into entities; adjacency lives only in Graph.
type Node struct {
	Kind NodeKind
	Key  string
}

// ID is the Node's stable identity string, used for hashing and as the
// lexicographic tie-break key during topological sort.
func (n Node) ID() string {
	return fmt.Sprintf("%d:%s", n.Kind, n.Key)
}

func (n Node) String() string {
	return fmt.Sprintf("%s(%s)", n.Kind, n.Key)
}

// SchemaNode, ExtensionNode, TypeNode, TableNode, FunctionNode, ColumnNode
// and ConstraintNode are constructors for each Node variant.
func SchemaNode(name string) Node     { return Node{Kind: NodeSchema, Key: name} }
func ExtensionNode(name string) Node  { return Node{Kind: NodeExtension, Key: name} }
func TypeNode(qname string) Node      { return Node{Kind: NodeType, Key: qname} }
func TableNode(qname string) Node     { return Node{Kind: NodeTable, Key: qname} }
func FunctionNode(qname string) Node  { return Node{Kind: NodeFunction, Key: qname} }
func ColumnNode(tableQName, column string) Node {
	return Node{Kind: NodeColumn, Key: tableQName + "." + column}
}
func ConstraintNode(tableQName, name string) Node {
	return Node{Kind: NodeConstraint, Key: tableQName + "." + name}
}
