// Package schema models the node-label / edge-type schema of the Kubernetes
// resource graph.
//
// A Schema is an immutable mapping from edge-type name to the set of ordered
// (source label, destination label) pairs the graph store declares for that
// edge. Direction matters: (Pod, Namespace) under BelongsTo does not imply
// (Namespace, Pod).
//
// Schemas are built once and shared read-only across validations. Three
// sources are supported:
//
//   - explicit edge triples (FromEdges)
//   - free-form text containing (:Src)-[:Edge]->(:Dst) declarations
//     (ParseDeclarations), e.g. an agent prompt or config file
//   - structured YAML/JSON documents with a "relationships" list
//     (LoadStructured)
//
// Load resolves a file through both structured and declaration forms, and
// Default returns the built-in Kubernetes edge set.
package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvSchemaPath names the environment variable that overrides the schema
// source file.
const EnvSchemaPath = "ARIADNE_SCHEMA_PATH"

// Pre-compiled declaration pattern: (:Src)-[:Edge]->(:Dst), whitespace
// permissive. Multiple declarations per line are matched independently.
var relDeclPattern = regexp.MustCompile(
	`\(\s*:\s*(?P<src>[A-Za-z_][\w]*)\s*\)\s*-\s*\[\s*:\s*(?P<rel>[A-Za-z_][\w]*)\s*\]\s*->\s*\(\s*:\s*(?P<dst>[A-Za-z_][\w]*)\s*\)`,
)

// Edge is a single relationship declaration.
type Edge struct {
	From string
	Type string
	To   string
}

// Pair is an ordered (source label, destination label) pair.
type Pair struct {
	Src string
	Dst string
}

// Schema is an immutable edge-type to label-pair mapping.
//
// Membership tests are purely positional: Allows(t, a, b) reports whether
// (a, b) was declared for t, never the reverse. Unknown edge types admit
// nothing.
type Schema struct {
	// pairs preserves first-declared order per edge type for diagnostics;
	// members provides O(1) membership tests.
	pairs   map[string][]Pair
	members map[string]map[Pair]struct{}
}

// FromEdges builds a Schema from explicit edge triples. Duplicate triples are
// collapsed; the first occurrence fixes enumeration order. Triples with an
// empty label or type are rejected.
func FromEdges(edges []Edge) (*Schema, error) {
	s := &Schema{
		pairs:   make(map[string][]Pair),
		members: make(map[string]map[Pair]struct{}),
	}
	for _, e := range edges {
		if e.From == "" || e.Type == "" || e.To == "" {
			return nil, fmt.Errorf("schema: incomplete edge %q-[%q]->%q", e.From, e.Type, e.To)
		}
		p := Pair{Src: e.From, Dst: e.To}
		set, ok := s.members[e.Type]
		if !ok {
			set = make(map[Pair]struct{})
			s.members[e.Type] = set
		}
		if _, dup := set[p]; dup {
			continue
		}
		set[p] = struct{}{}
		s.pairs[e.Type] = append(s.pairs[e.Type], p)
	}
	return s, nil
}

// MustFromEdges is FromEdges for known-good edge tables.
func MustFromEdges(edges []Edge) *Schema {
	s, err := FromEdges(edges)
	if err != nil {
		panic(err)
	}
	return s
}

// Allows reports whether the schema declares (srcLabel, dstLabel) for
// edgeType. Unknown edge types return false.
func (s *Schema) Allows(edgeType, srcLabel, dstLabel string) bool {
	set, ok := s.members[edgeType]
	if !ok {
		return false
	}
	_, ok = set[Pair{Src: srcLabel, Dst: dstLabel}]
	return ok
}

// Pairs returns the declared label pairs for edgeType in first-declared
// order. The returned slice is a copy.
func (s *Schema) Pairs(edgeType string) []Pair {
	declared := s.pairs[edgeType]
	if len(declared) == 0 {
		return nil
	}
	out := make([]Pair, len(declared))
	copy(out, declared)
	return out
}

// EdgeTypes returns all declared edge-type names, sorted.
func (s *Schema) EdgeTypes() []string {
	names := make([]string, 0, len(s.pairs))
	for name := range s.pairs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of declared edge types.
func (s *Schema) Len() int {
	return len(s.pairs)
}

// ParseDeclarations scans text for (:Src)-[:Edge]->(:Dst) declarations and
// returns the matched triples in order of appearance. Lines without a match
// are ignored, so the input may be any document that embeds declarations
// (an agent prompt, a YAML config, a README).
func ParseDeclarations(text string) []Edge {
	var edges []Edge
	for _, m := range relDeclPattern.FindAllStringSubmatch(text, -1) {
		edges = append(edges, Edge{From: m[1], Type: m[2], To: m[3]})
	}
	return edges
}

// structuredDoc is the YAML/JSON schema document form:
//
//	relationships:
//	  - from: Pod
//	    edge: BelongsTo
//	    to: Namespace
type structuredDoc struct {
	Relationships []structuredEdge `yaml:"relationships" json:"relationships"`
}

type structuredEdge struct {
	From string `yaml:"from" json:"from"`
	Edge string `yaml:"edge" json:"edge"`
	To   string `yaml:"to" json:"to"`
}

// LoadStructured parses the structured document form. YAML is a superset of
// JSON, so both encodings are accepted by the same decoder.
func LoadStructured(data []byte) (*Schema, error) {
	var doc structuredDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse structured document: %w", err)
	}
	if len(doc.Relationships) == 0 {
		return nil, fmt.Errorf("schema: structured document declares no relationships")
	}
	edges := make([]Edge, 0, len(doc.Relationships))
	for _, r := range doc.Relationships {
		edges = append(edges, Edge{From: r.From, Type: r.Edge, To: r.To})
	}
	return FromEdges(edges)
}

// Load reads a schema file. Files with a .yaml, .yml, or .json extension are
// tried as structured documents first; any file is then scanned for
// (:Src)-[:Edge]->(:Dst) declarations. A file yielding no edges is an error.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		if s, err := LoadStructured(data); err == nil {
			return s, nil
		}
	}
	edges := ParseDeclarations(string(data))
	if len(edges) == 0 {
		return nil, fmt.Errorf("schema: no relationship declarations found in %s", path)
	}
	return FromEdges(edges)
}

// FromEnv resolves the schema from ARIADNE_SCHEMA_PATH when set, otherwise
// returns Default().
func FromEnv() (*Schema, error) {
	if path := os.Getenv(EnvSchemaPath); path != "" {
		return Load(path)
	}
	return Default(), nil
}

// Default returns the built-in Kubernetes resource graph schema.
func Default() *Schema {
	return MustFromEdges([]Edge{
		{From: "Host", Type: "IsClaimedBy", To: "Ingress"},
		{From: "Ingress", Type: "DefinesBackend", To: "IngressServiceBackend"},
		{From: "IngressServiceBackend", Type: "TargetsService", To: "Service"},
		{From: "Service", Type: "Manages", To: "EndpointSlice"},
		{From: "EndpointSlice", Type: "ContainsEndpoint", To: "Endpoint"},
		{From: "Endpoint", Type: "HasAddress", To: "EndpointAddress"},
		{From: "EndpointAddress", Type: "IsAddressOf", To: "Pod"},
		{From: "EndpointAddress", Type: "ListedIn", To: "EndpointSlice"},
		{From: "Pod", Type: "BelongsTo", To: "Namespace"},
		{From: "Deployment", Type: "Manages", To: "ReplicaSet"},
		{From: "ReplicaSet", Type: "Manages", To: "Pod"},
		{From: "StatefulSet", Type: "Manages", To: "Pod"},
		{From: "DaemonSet", Type: "Manages", To: "Pod"},
		{From: "Job", Type: "Manages", To: "Pod"},
	})
}

// Declarations renders the schema back to (:Src)-[:Edge]->(:Dst) lines,
// one per pair, edge types sorted and pairs in declaration order.
func (s *Schema) Declarations() string {
	var b strings.Builder
	for _, edge := range s.EdgeTypes() {
		for _, p := range s.pairs[edge] {
			fmt.Fprintf(&b, "(:%s)-[:%s]->(:%s)\n", p.Src, edge, p.Dst)
		}
	}
	return b.String()
}
