package validator

import (
	"fmt"
	"sort"

	"github.com/reasy/ariadne/pkg/cypher"
)

// nodeUse is one occurrence of a node pattern: its inner text (parens
// stripped), the variable before the first ':' if any, and the labels
// introduced at this occurrence.
type nodeUse struct {
	text     string
	variable string
	labels   []string
}

// relationshipUse is one node-edge-node triple lifted from a pattern chain.
type relationshipUse struct {
	left     nodeUse
	right    nodeUse
	relText  string
	relTypes []string
	leftDir  string // "-" or "<-"
	rightDir string // "-" or "->"
	snippet  string
	rulePath string
}

// extraction accumulates the pattern facts of one or more parse trees: the
// linear stream of relationship uses and the union of labels declared per
// variable anywhere in the trees.
type extraction struct {
	relationships  []relationshipUse
	variableLabels map[string]map[string]struct{}
}

func newExtraction() *extraction {
	return &extraction{variableLabels: make(map[string]map[string]struct{})}
}

// addTree walks one parse tree, collecting node patterns for variable-label
// resolution and chain triples for schema checking. Pattern chains live under
// oC_PatternElement (MATCH/CREATE/MERGE patterns) and oC_RelationshipsPattern
// (pattern expressions).
func (x *extraction) addTree(tree *cypher.RuleNode) {
	cypher.Walk(tree, func(n *cypher.RuleNode) {
		switch n.Rule() {
		case "oC_NodePattern":
			node := nodeFromPattern(n)
			if node.variable != "" && len(node.labels) > 0 {
				set, ok := x.variableLabels[node.variable]
				if !ok {
					set = make(map[string]struct{})
					x.variableLabels[node.variable] = set
				}
				for _, l := range node.labels {
					set[l] = struct{}{}
				}
			}
		case "oC_PatternElement", "oC_RelationshipsPattern":
			x.collectChain(n)
		}
	})
}

func (x *extraction) collectChain(element *cypher.RuleNode) {
	start := element.Child("oC_NodePattern")
	if start == nil {
		return
	}
	current := nodeFromPattern(start)
	for _, chain := range element.ChildrenByRule("oC_PatternElementChain") {
		relCtx := chain.Child("oC_RelationshipPattern")
		nextCtx := chain.Child("oC_NodePattern")
		if relCtx == nil || nextCtx == nil {
			continue
		}
		next := nodeFromPattern(nextCtx)
		leftDir, rightDir := relationshipDirs(relCtx)
		relText := relationshipText(relCtx)
		use := relationshipUse{
			left:     current,
			right:    next,
			relText:  relText,
			relTypes: relationshipTypes(relCtx),
			leftDir:  leftDir,
			rightDir: rightDir,
			snippet:  formatSnippet(current.text, next.text, relText, leftDir, rightDir),
			rulePath: cypher.RulePath(relCtx),
		}
		x.relationships = append(x.relationships, use)
		current = next
	}
}

// resolvedLabels freezes the accumulated per-variable label sets, sorted for
// deterministic diagnostics.
func (x *extraction) resolvedLabels() map[string][]string {
	out := make(map[string][]string, len(x.variableLabels))
	for variable, set := range x.variableLabels {
		labels := make([]string, 0, len(set))
		for l := range set {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		out[variable] = labels
	}
	return out
}

// resolveLabels returns a node occurrence's effective labels: its explicit
// labels when present, otherwise the labels its variable accumulated at other
// occurrences. A variable never labeled anywhere resolves to nothing, which
// exempts its relationships from schema checking.
func resolveLabels(explicit []string, variable string, byVariable map[string][]string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	if variable != "" {
		return byVariable[variable]
	}
	return nil
}

func nodeFromPattern(ctx *cypher.RuleNode) nodeUse {
	node := nodeUse{text: stripWrapping(ctx.Text(), '(', ')')}
	if v := ctx.Child("oC_Variable"); v != nil {
		node.variable = cypher.CleanName(v.Text())
	}
	if labels := ctx.Child("oC_NodeLabels"); labels != nil {
		for _, name := range labels.Descendants("oC_LabelName") {
			node.labels = append(node.labels, cypher.CleanName(name.Text()))
		}
	}
	return node
}

func relationshipTypes(relCtx *cypher.RuleNode) []string {
	detail := relCtx.Child("oC_RelationshipDetail")
	if detail == nil {
		return nil
	}
	types := detail.Child("oC_RelationshipTypes")
	if types == nil {
		return nil
	}
	var out []string
	for _, name := range types.ChildrenByRule("oC_RelTypeName") {
		out = append(out, cypher.CleanName(name.Text()))
	}
	return out
}

func relationshipText(relCtx *cypher.RuleNode) string {
	detail := relCtx.Child("oC_RelationshipDetail")
	if detail == nil {
		return ""
	}
	return stripWrapping(detail.Text(), '[', ']')
}

func relationshipDirs(relCtx *cypher.RuleNode) (string, string) {
	leftDir, rightDir := "-", "-"
	if relCtx.HasTerminal("<") {
		leftDir = "<-"
	}
	if relCtx.HasTerminal(">") {
		rightDir = "->"
	}
	return leftDir, rightDir
}

func formatSnippet(leftText, rightText, relText, leftDir, rightDir string) string {
	return fmt.Sprintf("(%s)%s[%s]%s(%s)", leftText, leftDir, relText, rightDir, rightText)
}

func stripWrapping(text string, left, right byte) string {
	if len(text) >= 2 && text[0] == left && text[len(text)-1] == right {
		return text[1 : len(text)-1]
	}
	return text
}
