package validator

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reasy/ariadne/pkg/schema"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.FromEdges([]schema.Edge{
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
	require.NoError(t, err)
	return s
}

func testValidator(t *testing.T) *Validator {
	t.Helper()
	return New(testSchema(t), WithLogger(slog.Default()))
}

const fullPathQuery = "MATCH (h:Host)-[:IsClaimedBy]->(i:Ingress)" +
	"-[:DefinesBackend]->(b:IngressServiceBackend)" +
	"-[:TargetsService]->(s:Service)" +
	"-[:Manages]->(es:EndpointSlice)" +
	"-[:ContainsEndpoint]->(e:Endpoint)" +
	"-[:HasAddress]->(ea:EndpointAddress)" +
	"-[:IsAddressOf]->(p:Pod) " +
	"RETURN p"

func TestAcceptsFullPath(t *testing.T) {
	v := testValidator(t)
	assert.Nil(t, v.Validate(fullPathQuery))
}

func TestAcceptsMultipleWithClauses(t *testing.T) {
	v := testValidator(t)
	assert.Nil(t, v.Validate("MATCH (h:Host)-[:IsClaimedBy]->(i:Ingress) WITH h, i WITH h RETURN h"))
}

func TestRejectsReversedEdge(t *testing.T) {
	v := testValidator(t)
	query := "MATCH (h:Host)-[:IsClaimedBy]->(i:Ingress)" +
		"-[:DefinesBackend]->(b:IngressServiceBackend)" +
		"-[:TargetsService]->(s:Service)" +
		"-[:Manages]->(es:EndpointSlice)" +
		"-[:ContainsEndpoint]->(e:Endpoint)" +
		"<-[:HasAddress]-(ea:EndpointAddress)" +
		"-[:IsAddressOf]->(p:Pod) " +
		"RETURN p"
	verdict := v.Validate(query)
	require.NotNil(t, verdict)
	var schemaErr *SchemaError
	require.ErrorAs(t, verdict, &schemaErr)
	require.Len(t, schemaErr.Violations, 1)

	violation := schemaErr.Violations[0]
	assert.Equal(t, "HasAddress", violation.RelType)
	assert.Equal(t, []string{"Endpoint"}, violation.LeftLabels)
	assert.Equal(t, []string{"EndpointAddress"}, violation.RightLabels)
	assert.Equal(t, DirectionRightToLeft, violation.Direction)
	assert.Equal(t, "(e:Endpoint)<-[:HasAddress]-(ea:EndpointAddress)", violation.Snippet)
	assert.Equal(t, []schema.Pair{{Src: "Endpoint", Dst: "EndpointAddress"}}, violation.AllowedPairs)

	message := verdict.Error()
	assert.Contains(t, message, "Cypher schema validation failed:")
	assert.Contains(t, message, "Endpoint <- EndpointAddress via HasAddress")
	assert.Contains(t, message, "Allowed: Endpoint -> EndpointAddress")
	assert.Contains(t, message, "[rule=")
	assert.Contains(t, message, "Hint: HasAddress is only allowed as Endpoint -> EndpointAddress.")
}

func TestRejectsWrongDirectionFromLogExample(t *testing.T) {
	v := testValidator(t)
	query := "MATCH (h:Host)-[:IsClaimedBy]->(i:Ingress)\n" +
		"WHERE h.name = 'litmus.qa.example.is'\n" +
		"MATCH (i)-[:DefinesBackend]->(b:IngressServiceBackend)-[:TargetsService]->(s:Service)\n" +
		"MATCH (s)-[:Manages]->(es:EndpointSlice)-[:ContainsEndpoint]->(e:Endpoint)\n" +
		"MATCH (e)<-[:HasAddress]-(ea:EndpointAddress)-[:IsAddressOf]->(p:Pod)\n" +
		"RETURN DISTINCT\n" +
		"  p['metadata']['namespace'] AS namespace,\n" +
		"  p['metadata']['name'] AS pod,\n" +
		"  p['status']['podIP'] AS pod_ip,\n" +
		"  s['metadata']['name'] AS service,\n" +
		"  i['metadata']['name'] AS ingress\n" +
		"ORDER BY namespace, pod"
	verdict := v.Validate(query)
	require.NotNil(t, verdict)
	var schemaErr *SchemaError
	require.ErrorAs(t, verdict, &schemaErr)
	message := verdict.Error()
	assert.Contains(t, message, "HasAddress")
	assert.Contains(t, message, "Endpoint")
	assert.Contains(t, message, "EndpointAddress")
	assert.Contains(t, message, "[rule=")
	assert.Contains(t, message, "Hint:")
}

func TestAcceptsValidQueryFromLogExample(t *testing.T) {
	v := testValidator(t)
	query := "MATCH (h:Host)-[:IsClaimedBy]->(i:Ingress)-[:DefinesBackend]->(b:IngressServiceBackend)" +
		"-[:TargetsService]->(s:Service)-[:Manages]->(es:EndpointSlice)-[:ContainsEndpoint]->(e:Endpoint)" +
		"-[:HasAddress]->(ea:EndpointAddress)-[:IsAddressOf]->(p:Pod)\n" +
		"WHERE h.name = 'litmus.qa.example.is'\n" +
		"RETURN DISTINCT\n" +
		"  p['metadata']['namespace'] AS namespace,\n" +
		"  p['metadata']['name'] AS pod,\n" +
		"  p['status']['podIP'] AS podIP,\n" +
		"  p['status']['phase'] AS phase\n" +
		"ORDER BY namespace, pod;"
	assert.Nil(t, v.Validate(query))
}

func TestAcceptsExistsSubqueryWithoutReturn(t *testing.T) {
	v := testValidator(t)
	query := "MATCH (s:Service)\n" +
		"WHERE NOT EXISTS { MATCH (s)-[:Manages]->(:EndpointSlice) }\n" +
		"RETURN s['metadata']['namespace'] AS namespace,\n" +
		"       s['metadata']['name'] AS service\n" +
		"ORDER BY namespace, service"
	assert.Nil(t, v.Validate(query))
}

func TestAcceptsExistsPatternFunction(t *testing.T) {
	v := testValidator(t)
	query := "MATCH (s:Service)\n" +
		"WHERE NOT EXISTS((s)-[:Manages]->(:EndpointSlice))\n" +
		"RETURN s['metadata']['name'] AS service"
	assert.Nil(t, v.Validate(query))
}

func TestAcceptsMultipleExistsSubqueriesWithoutReturn(t *testing.T) {
	v := testValidator(t)
	query := "MATCH (ns:Namespace)<-[:BelongsTo]-(p:Pod)\n" +
		"WHERE ns['metadata']['name'] = 'litmus'\n" +
		"  AND NOT EXISTS { MATCH (d:Deployment)-[:Manages]->(rs:ReplicaSet)-[:Manages]->(p) }\n" +
		"  AND NOT EXISTS { MATCH (ss:StatefulSet)-[:Manages]->(p) }\n" +
		"  AND NOT EXISTS { MATCH (ds:DaemonSet)-[:Manages]->(p) }\n" +
		"  AND NOT EXISTS { MATCH (j:Job)-[:Manages]->(p) }\n" +
		"  AND NOT EXISTS { MATCH (rs2:ReplicaSet)-[:Manages]->(p) }\n" +
		"RETURN p['metadata']['name'] AS pod,\n" +
		"       p['status']['phase'] AS phase\n" +
		"ORDER BY pod"
	assert.Nil(t, v.Validate(query))
}

func TestVariableLabelPropagation(t *testing.T) {
	v := testValidator(t)
	query := "MATCH (p:Pod)-[:BelongsTo]->(ns:Namespace) WITH p " +
		"MATCH (p)-[:BelongsTo]->(ns2:Namespace) RETURN p"
	assert.Nil(t, v.Validate(query))
}

func TestUnlabeledVariableIsSkippedNotRejected(t *testing.T) {
	v := testValidator(t)
	// Neither end resolves to a label set anywhere; the edge is not checked.
	assert.Nil(t, v.Validate("MATCH (a)-[:TotallyUnknown]->(b) RETURN a"))
}

func TestRejectsUnsupportedFunction(t *testing.T) {
	v := testValidator(t)
	verdict := v.Validate("MATCH (n:Pod) RETURN time() AS now")
	require.NotNil(t, verdict)
	var compatErr *CompatibilityError
	require.ErrorAs(t, verdict, &compatErr)
	assert.Equal(t, []string{"Function 'time' is not supported"}, compatErr.Issues)
	assert.Contains(t, verdict.Error(), "Cypher uses constructs not supported by Memgraph:")
}

func TestRejectsExistsPropertyFunction(t *testing.T) {
	v := testValidator(t)
	verdict := v.Validate("MATCH (n:Pod) WHERE exists(n.metadata) RETURN n")
	require.NotNil(t, verdict)
	var compatErr *CompatibilityError
	require.ErrorAs(t, verdict, &compatErr)
	assert.Equal(t, []string{"exists(n.property) is not supported; use IS NOT NULL"}, compatErr.Issues)
}

func TestRejectsInlinePropertyMapInMatch(t *testing.T) {
	v := testValidator(t)
	verdict := v.Validate(
		"MATCH (p:Pod {metadata: {name: 'pyroscope-compactor-2'}})-[:BelongsTo]->(ns:Namespace) RETURN p")
	require.NotNil(t, verdict)
	var compatErr *CompatibilityError
	require.ErrorAs(t, verdict, &compatErr)
	assert.Contains(t, verdict.Error(), "Inline property maps in MATCH")
}

func TestRejectsSyntaxGarbage(t *testing.T) {
	v := testValidator(t)
	verdict := v.Validate("this is not cypher at all")
	require.NotNil(t, verdict)
	var syntaxErr *SyntaxError
	require.ErrorAs(t, verdict, &syntaxErr)
	assert.Contains(t, verdict.Error(), "Cypher parse failed")
}

func TestFallbackStillValidatesSchema(t *testing.T) {
	v := testValidator(t)
	// The second segment is unparseable garbage; the first segment still
	// yields a tree and its reversed edge is still caught.
	query := "MATCH (e:Endpoint)-[:HasAddress]->(ea:EndpointAddress) WITH ea ^^^garbage^^^"
	verdict := v.Validate("MATCH (e:Endpoint)<-[:HasAddress]-(ea:EndpointAddress) WITH ea ^^^garbage^^^")
	require.NotNil(t, verdict)
	var schemaErr *SchemaError
	require.ErrorAs(t, verdict, &schemaErr)
	require.Len(t, schemaErr.Violations, 1)
	assert.Equal(t, "HasAddress", schemaErr.Violations[0].RelType)

	// The well-directed variant passes through the same fallback cleanly...
	verdict = v.Validate(query)
	assert.Nil(t, verdict)
}

func TestFallbackKeepsTextualCompatibilityChecks(t *testing.T) {
	v := testValidator(t)
	// Unparseable tail forces fallback; the textual SHORTEST rule still
	// rejects.
	verdict := v.Validate("MATCH (p:Pod) WITH p SHORTEST ^^^garbage^^^")
	require.NotNil(t, verdict)
	var compatErr *CompatibilityError
	require.ErrorAs(t, verdict, &compatErr)
	assert.Contains(t, compatErr.Issues, "SHORTEST keyword is not supported; use Memgraph path syntax")
}

func TestFallbackWithNoTreesSurfacesOriginalSyntaxError(t *testing.T) {
	v := testValidator(t)
	verdict := v.Validate("WITH WITH WITH")
	require.NotNil(t, verdict)
	var syntaxErr *SyntaxError
	require.ErrorAs(t, verdict, &syntaxErr)
}

func TestEdgeTypeAlternativesAdmitWhenAnyAllowed(t *testing.T) {
	v := testValidator(t)
	assert.Nil(t, v.Validate("MATCH (s:Service)-[:Manages|IsClaimedBy]->(es:EndpointSlice) RETURN s"))
}

func TestUndirectedPatternChecksBothOrientations(t *testing.T) {
	v := testValidator(t)
	assert.Nil(t, v.Validate("MATCH (es:EndpointSlice)-[:Manages]-(s:Service) RETURN s"))
	assert.Nil(t, v.Validate("MATCH (s:Service)-[:Manages]-(es:EndpointSlice) RETURN s"))
}

func TestBidirectionalPatternChecksBothOrientations(t *testing.T) {
	v := testValidator(t)
	assert.Nil(t, v.Validate("MATCH (es:EndpointSlice)<-[:Manages]->(s:Service) RETURN s"))
}

func TestRelationshipWithoutTypesIsSkipped(t *testing.T) {
	v := testValidator(t)
	assert.Nil(t, v.Validate("MATCH (a:Host)-[r]->(b:Pod) RETURN a"))
}

func TestDeterministicDiagnostics(t *testing.T) {
	v := testValidator(t)
	query := "MATCH (p:Pod)<-[:BelongsTo]-(ns:Namespace) MATCH (h:Host)<-[:IsClaimedBy]-(i:Ingress) RETURN p"
	first := v.Validate(query)
	require.NotNil(t, first)
	for i := 0; i < 5; i++ {
		again := v.Validate(query)
		require.NotNil(t, again)
		assert.Equal(t, first.Error(), again.Error())
	}
}

func TestValidatorIsSafeForConcurrentUse(t *testing.T) {
	v := New(testSchema(t), WithCache(64, time.Minute))
	done := make(chan struct{}, 8)
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 25; j++ {
				_ = v.Validate(fullPathQuery)
				_ = v.Validate("MATCH (n:Pod) RETURN time() AS now")
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	assert.Nil(t, v.Validate(fullPathQuery))
}

func TestCachedVerdictMatchesFreshOne(t *testing.T) {
	cached := New(testSchema(t), WithCache(16, time.Minute))
	fresh := testValidator(t)
	queries := []string{
		fullPathQuery,
		"MATCH (n:Pod) RETURN time() AS now",
		"MATCH (p:Pod)<-[:BelongsTo]-(ns:Namespace) RETURN p",
		"garbage input ^^",
	}
	for _, q := range queries {
		for i := 0; i < 3; i++ {
			got := cached.Validate(q)
			want := fresh.Validate(q)
			if want == nil {
				assert.Nil(t, got, "query: %s", q)
			} else {
				require.NotNil(t, got, "query: %s", q)
				assert.Equal(t, want.Error(), got.Error(), "query: %s", q)
			}
		}
	}
}
