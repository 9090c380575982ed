package cypher

import "strings"

// Node is either a RuleNode or a TerminalNode. The tree mirrors the shape a
// generated openCypher parser produces: interior nodes carry grammar rule
// names, leaves carry tokens, and Text concatenates leaf lexemes without
// whitespace.
type Node interface {
	// Text returns the concatenated token texts under this node.
	Text() string
}

// TerminalNode is a leaf holding a single token.
type TerminalNode struct {
	tok token
}

// Text returns the token's exact lexeme.
func (t *TerminalNode) Text() string { return t.tok.Text }

// Token returns the underlying token.
func (t *TerminalNode) Token() token { return t.tok }

// RuleNode is an interior parse-tree node labeled with a grammar rule name.
// Children cover contiguous spans of the input in order. Parent pointers are
// set when a child is attached and let diagnostics compute rule paths.
type RuleNode struct {
	rule     string
	parent   *RuleNode
	children []Node
}

func newRule(name string) *RuleNode {
	return &RuleNode{rule: name}
}

// Rule returns the grammar rule name, e.g. "oC_PatternPart".
func (r *RuleNode) Rule() string { return r.rule }

// Parent returns the enclosing rule node, or nil at the root.
func (r *RuleNode) Parent() *RuleNode { return r.parent }

// Children returns the ordered child nodes. The slice is owned by the tree
// and must not be mutated.
func (r *RuleNode) Children() []Node { return r.children }

// Text concatenates all terminal texts under the node, with no separators,
// matching the getText contract of generated parsers: "(p:Pod)" for a node
// pattern regardless of source whitespace.
func (r *RuleNode) Text() string {
	var b strings.Builder
	r.writeText(&b)
	return b.String()
}

func (r *RuleNode) writeText(b *strings.Builder) {
	for _, c := range r.children {
		switch n := c.(type) {
		case *TerminalNode:
			b.WriteString(n.tok.Text)
		case *RuleNode:
			n.writeText(b)
		}
	}
}

func (r *RuleNode) add(n Node) {
	if child, ok := n.(*RuleNode); ok {
		child.parent = r
	}
	r.children = append(r.children, n)
}

// Child returns the first direct child with the given rule name, or nil.
func (r *RuleNode) Child(rule string) *RuleNode {
	for _, c := range r.children {
		if rn, ok := c.(*RuleNode); ok && rn.rule == rule {
			return rn
		}
	}
	return nil
}

// ChildrenByRule returns all direct children with the given rule name.
func (r *RuleNode) ChildrenByRule(rule string) []*RuleNode {
	var out []*RuleNode
	for _, c := range r.children {
		if rn, ok := c.(*RuleNode); ok && rn.rule == rule {
			out = append(out, rn)
		}
	}
	return out
}

// Descendants returns every rule node under r (excluding r itself) with the
// given rule name, in document order.
func (r *RuleNode) Descendants(rule string) []*RuleNode {
	var out []*RuleNode
	Walk(r, func(n *RuleNode) {
		if n != r && n.rule == rule {
			out = append(out, n)
		}
	})
	return out
}

// HasTerminal reports whether a direct child terminal has the exact text.
func (r *RuleNode) HasTerminal(text string) bool {
	for _, c := range r.children {
		if tn, ok := c.(*TerminalNode); ok && tn.tok.Text == text {
			return true
		}
	}
	return false
}

// Walk visits every rule node in the subtree in document order, parents
// before children.
func Walk(root *RuleNode, visit func(*RuleNode)) {
	if root == nil {
		return
	}
	visit(root)
	for _, c := range root.children {
		if rn, ok := c.(*RuleNode); ok {
			Walk(rn, visit)
		}
	}
}

// RulePath returns the "/"-joined rule names from the tree root down to n,
// e.g. "oC_Cypher/oC_Statement/.../oC_RelationshipPattern".
func RulePath(n *RuleNode) string {
	var parts []string
	for cur := n; cur != nil; cur = cur.parent {
		parts = append(parts, cur.rule)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// CleanName strips one level of backtick quoting from an identifier.
func CleanName(name string) string {
	if len(name) >= 2 && name[0] == '`' && name[len(name)-1] == '`' {
		return name[1 : len(name)-1]
	}
	return name
}
