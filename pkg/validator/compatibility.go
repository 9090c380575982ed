package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/reasy/ariadne/pkg/cypher"
)

// Memgraph compatibility checking. Two layers: textual rules run on the
// string-literal-stripped query for every validation; AST rules walk function
// invocations and run only when the whole query parsed (the segmented
// fallback yields partial trees, so AST conclusions would not be
// deterministic there).

// unsupportedFunctions are function names (lowercased, dotted tail) the
// downstream engine does not implement.
var unsupportedFunctions = map[string]struct{}{
	"tobooleanlist":    {},
	"tobooleanornull":  {},
	"tofloatlist":      {},
	"tofloatornull":    {},
	"tointegerlist":    {},
	"tointegerornull":  {},
	"tostringlist":     {},
	"isempty":          {},
	"elementid":        {},
	"nullif":           {},
	"percentilecont":   {},
	"percentiledisc":   {},
	"stdev":            {},
	"stdevp":           {},
	"isnan":            {},
	"cot":              {},
	"degrees":          {},
	"haversin":         {},
	"radians":          {},
	"normalize":        {},
	"time":             {},
	"shortestpath":     {},
	"allshortestpaths": {},
}

// Textual rule patterns, compiled once at package init.
var (
	negatedLabelPattern    = regexp.MustCompile(`:!`)
	shortestKeywordPattern = regexp.MustCompile(`(?i)\bSHORTEST\b`)
	countSubqueryPattern   = regexp.MustCompile(`(?i)\bCOUNT\s*\{`)
	collectSubqueryPattern = regexp.MustCompile(`(?i)\bCOLLECT\s*\{`)
	typePredicatePattern   = regexp.MustCompile(`(?i)\bIS\s*::`)
	octalLiteralPattern    = regexp.MustCompile(`(?i)\b0o[0-7]+\b`)
	nanInfLiteralPattern   = regexp.MustCompile(`(?i)\b(NaN|Inf|Infinity)\b`)
	fixedLengthPattern     = regexp.MustCompile(`(\]|-)\s*\{\s*\d`)
	inlinePropertyPattern  = regexp.MustCompile(`\([^()]*:[^()]*\{`)
)

// findCompatibilityIssues collects every engine-compatibility violation in
// the query. tree may be nil (fallback parse), in which case only textual
// rules run.
func findCompatibilityIssues(text string, tree *cypher.RuleNode) []string {
	stripped := cypher.StripStringLiterals(text)
	var issues []string

	if negatedLabelPattern.MatchString(stripped) {
		issues = append(issues, "NOT label expressions (:!Label) are not supported")
	}
	if shortestKeywordPattern.MatchString(stripped) {
		issues = append(issues, "SHORTEST keyword is not supported; use Memgraph path syntax")
	}
	if countSubqueryPattern.MatchString(stripped) {
		issues = append(issues, "COUNT subqueries are not supported")
	}
	if collectSubqueryPattern.MatchString(stripped) {
		issues = append(issues, "COLLECT subqueries are not supported")
	}
	if typePredicatePattern.MatchString(stripped) {
		issues = append(issues, "Type predicate 'IS ::' is not supported")
	}
	if octalLiteralPattern.MatchString(stripped) {
		issues = append(issues, "Octal integer literals (0o...) are not supported")
	}
	if nanInfLiteralPattern.MatchString(stripped) {
		issues = append(issues, "NaN/Inf/Infinity float literals are not supported")
	}
	if fixedLengthPattern.MatchString(stripped) {
		issues = append(issues, "Fixed-length patterns using '{n}' are not supported")
	}
	if caseWhenHasMultipleValues(stripped) {
		issues = append(issues, "CASE WHEN with multiple values (comma-separated) is not supported")
	}
	if inlinePropertyPattern.MatchString(stripped) {
		issues = append(issues, "Inline property maps in MATCH patterns are not supported; filter with WHERE instead")
	}

	if tree == nil {
		return issues
	}

	cypher.Walk(tree, func(n *cypher.RuleNode) {
		if !strings.HasSuffix(strings.ToLower(n.Rule()), "functioninvocation") {
			return
		}
		funcName, argsText := splitFunctionInvocation(n.Text())
		funcName = strings.ToLower(funcName)
		if _, bad := unsupportedFunctions[funcName]; bad {
			issues = append(issues, fmt.Sprintf("Function '%s' is not supported", funcName))
			return
		}
		if funcName == "exists" {
			if !cypher.LooksLikePatternExpression(argsText) {
				issues = append(issues, "exists(n.property) is not supported; use IS NOT NULL")
			}
			return
		}
		if cypher.LooksLikePatternExpression(argsText) {
			issues = append(issues, "Patterns in expressions are not supported (except EXISTS(pattern))")
		}
	})
	return issues
}

// caseWhenHasMultipleValues detects CASE ... WHEN v1, v2 THEN arms: a comma
// at top-level nesting depth between a WHEN and its THEN.
func caseWhenHasMultipleValues(stripped string) bool {
	upper := strings.ToUpper(stripped)
	depthParen, depthBracket, depthBrace := 0, 0, 0
	inWhen := false
	commaInWhen := false
	i := 0
	for i < len(stripped) {
		switch stripped[i] {
		case '(':
			depthParen++
		case ')':
			depthParen = max(0, depthParen-1)
		case '[':
			depthBracket++
		case ']':
			depthBracket = max(0, depthBracket-1)
		case '{':
			depthBrace++
		case '}':
			depthBrace = max(0, depthBrace-1)
		}
		if depthParen == 0 && depthBracket == 0 && depthBrace == 0 {
			if strings.HasPrefix(upper[i:], "WHEN") {
				inWhen = true
				commaInWhen = false
				i += 4
				continue
			}
			if inWhen && strings.HasPrefix(upper[i:], "THEN") {
				if commaInWhen {
					return true
				}
				inWhen = false
				i += 4
				continue
			}
			if inWhen && stripped[i] == ',' {
				commaInWhen = true
			}
		}
		i++
	}
	return false
}

// splitFunctionInvocation splits a function invocation's concatenated text
// into the dotted name's last segment and the raw argument text.
func splitFunctionInvocation(text string) (string, string) {
	idx := strings.IndexByte(text, '(')
	if idx < 0 {
		return text, ""
	}
	name := text[:idx]
	args := text[idx+1:]
	if strings.HasSuffix(args, ")") {
		args = args[:len(args)-1]
	}
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		name = name[dot+1:]
	}
	return name, args
}
