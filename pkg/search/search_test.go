package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sap-docs/mcp-server/pkg/catalog"
	"github.com/sap-docs/mcp-server/pkg/index"
	"github.com/sap-docs/mcp-server/pkg/live"
)

func TestExpandOriginalFirst(t *testing.T) {
	variants := Expand("  OData   batch  requests ")
	require.NotEmpty(t, variants)
	assert.Equal(t, "OData batch requests", variants[0])
}

func TestExpandIdempotent(t *testing.T) {
	first := Expand("sap.m.Button press event")
	again := Expand(first[0])
	assert.Equal(t, first, again)
}

func TestExpandStable(t *testing.T) {
	a := Expand("cds entity draft handling")
	b := Expand("cds entity draft handling")
	assert.Equal(t, a, b)
}

func TestExpandDottedIdentifier(t *testing.T) {
	variants := Expand("sap.m.Button")
	assert.Contains(t, variants, "Button")
	assert.Contains(t, variants, "sap.m")
}

func TestExpandCamelCaseSplit(t *testing.T) {
	variants := Expand("ColumnMicroChart")
	assert.Contains(t, variants, "Column Micro Chart")
}

func TestExpandSynonyms(t *testing.T) {
	variants := Expand("wizard control")
	assert.Contains(t, variants, "multi-step process control")
}

func TestExpandEmpty(t *testing.T) {
	assert.Nil(t, Expand("   "))
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"chart", "chars", 1},
		{"table", "tables", 1},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein(tt.a, tt.b), "levenshtein(%q,%q)", tt.a, tt.b)
	}

	assert.True(t, withinDistance("chart", "chrat", 2))
	assert.False(t, withinDistance("chart", "binding", 2))
}

func searchCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Bundle{
		{
			ID:   "/sapui5",
			Name: "SAPUI5",
			Documents: []catalog.Document{
				{ID: "/sapui5/06_SAP_Fiori_Elements/column-micro-chart-1a4ecb8", Library: "/sapui5",
					Kind: catalog.KindGuide, Title: "Column Micro Chart",
					Description: "Embedding the column micro chart in object pages", RelFile: "cmc.md"},
				{ID: "/sapui5/04_Essentials/table-binding", Library: "/sapui5",
					Kind: catalog.KindGuide, Title: "Table Row Binding",
					Description: "Binding rows of a responsive table", RelFile: "table.md"},
				{ID: "/sapui5/04_Essentials/table-binding#growing", Library: "/sapui5",
					Kind: catalog.KindSection, Title: "Growing Threshold",
					Parent: "/sapui5/04_Essentials/table-binding", Level: 2, RelFile: "table.md"},
			},
		},
		{
			ID:   "/openui5-samples",
			Name: "Samples",
			Documents: []catalog.Document{
				{ID: "/openui5-samples/chart-sample", Library: "/openui5-samples",
					Kind: catalog.KindSample, Title: "sap.suite.ui.microchart.ColumnMicroChart sample: Basic (view)",
					RelFile: "s.xml", Meta: &catalog.ControlMeta{Control: "ColumnMicroChart", Namespace: "sap.suite.ui.microchart"}},
			},
		},
		{
			ID:   "/cap",
			Name: "CAP",
			Documents: []catalog.Document{
				{ID: "/cap/guides/providing-services", Library: "/cap",
					Kind: catalog.KindGuide, Title: "Providing Services",
					Description: "Defining cds services and entities", RelFile: "ps.md"},
			},
		},
	})
	require.NoError(t, err)
	return c
}

func scanEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(nil, searchCatalog(t), nil, nil, time.Second)
}

func ftsEngine(t *testing.T) *Engine {
	t.Helper()
	ix, err := index.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	require.NoError(t, ix.Rebuild(searchCatalog(t)))
	return NewEngine(ix, searchCatalog(t), nil, nil, time.Second)
}

func TestSearchExactControlHit(t *testing.T) {
	res, err := scanEngine(t).Search(context.Background(), "Column Micro Chart", Options{})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "/sapui5/06_SAP_Fiori_Elements/column-micro-chart-1a4ecb8", res.Hits[0].ID)
	assert.GreaterOrEqual(t, res.Hits[0].Score, 100)
}

func TestSearchScoresMonotone(t *testing.T) {
	res, err := scanEngine(t).Search(context.Background(), "binding", Options{K: 50})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	for i := 1; i < len(res.Hits); i++ {
		assert.GreaterOrEqual(t, res.Hits[i-1].Score, res.Hits[i].Score)
	}
}

func TestSearchKBound(t *testing.T) {
	e := scanEngine(t)

	res, err := e.Search(context.Background(), "table", Options{K: 1})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Hits), 1)

	// K above the maximum is clamped, not rejected.
	res, err = e.Search(context.Background(), "table", Options{K: 500})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.Hits), 50)
}

func TestSearchSamplesExcludedByDefault(t *testing.T) {
	e := scanEngine(t)

	res, err := e.Search(context.Background(), "ColumnMicroChart", Options{})
	require.NoError(t, err)
	for _, h := range res.Hits {
		assert.NotEqual(t, catalog.KindSample, h.Kind)
	}

	res, err = e.Search(context.Background(), "ColumnMicroChart", Options{IncludeSamples: true})
	require.NoError(t, err)
	found := false
	for _, h := range res.Hits {
		if h.Kind == catalog.KindSample {
			found = true
		}
	}
	assert.True(t, found, "samples must appear when includeSamples is set")
}

func TestSearchSourceFilter(t *testing.T) {
	res, err := scanEngine(t).Search(context.Background(), "services", Options{Sources: []string{"/cap"}})
	require.NoError(t, err)
	require.NotEmpty(t, res.Hits)
	for _, h := range res.Hits {
		assert.Equal(t, "/cap", h.Library)
	}
}

func TestScoreContextPenalty(t *testing.T) {
	// A query firmly in CAP vocabulary penalizes an equally-titled hit
	// from a UI5 library by 25 points.
	variants := []string{"cds entity definition"}
	capEntry := index.Entry{ID: "/cap/x", Library: "/cap", Title: "Entity Definition", Kind: catalog.KindGuide}
	ui5Entry := index.Entry{ID: "/sapui5/x", Library: "/sapui5", Title: "Entity Definition", Kind: catalog.KindGuide}

	capScore, _ := scoreEntry(capEntry, variants)
	ui5Score, ui5Breakdown := scoreEntry(ui5Entry, variants)
	assert.Equal(t, capScore-25, ui5Score)
	assert.Equal(t, -25, ui5Breakdown["context"])
}

func TestScoreSectionBias(t *testing.T) {
	variants := []string{"growing threshold"}
	parent := index.Entry{ID: "/sapui5/t", Library: "/sapui5", Title: "Growing Threshold", Kind: catalog.KindGuide}
	section := index.Entry{ID: "/sapui5/t#growing-threshold", Library: "/sapui5", Title: "Growing Threshold", Kind: catalog.KindSection}

	ps, _ := scoreEntry(parent, variants)
	ss, _ := scoreEntry(section, variants)
	assert.Equal(t, ps+5, ss, "matching section heading outscores its parent")
}

func TestSearchFallbackTransparency(t *testing.T) {
	// With the FTS candidate set covering the catalog, the scan path
	// and the FTS path must produce identical scores.
	scan, err := scanEngine(t).Search(context.Background(), "column micro chart", Options{})
	require.NoError(t, err)
	fts, err := ftsEngine(t).Search(context.Background(), "column micro chart", Options{})
	require.NoError(t, err)

	assert.True(t, scan.Fallback)
	assert.False(t, fts.Fallback)
	require.NotEmpty(t, fts.Hits)
	assert.Equal(t, scan.Hits[0].ID, fts.Hits[0].ID)
	assert.Equal(t, scan.Hits[0].Score, fts.Hits[0].Score)
}

func TestSearchEmptyResultIsNotError(t *testing.T) {
	res, err := scanEngine(t).Search(context.Background(), "zzz nothing matches this", Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestFuseRRF(t *testing.T) {
	a := []Hit{{ID: "x", Source: "local"}, {ID: "y", Source: "local"}}
	b := []Hit{{ID: "y", Source: "community"}, {ID: "z", Source: "community"}}

	fused := fuseRRF(a, b)
	require.Len(t, fused, 3)
	// y appears in both lists (ranks 2 and 1) and outscores x (rank 1 once).
	assert.Equal(t, "y", fused[0].ID)
	assert.Equal(t, "local", fused[0].Source, "provenance from first appearance")
	assert.Equal(t, "x", fused[1].ID)
	assert.Equal(t, "z", fused[2].ID)
}

func TestFuseRRFCarriesFusedScores(t *testing.T) {
	// Pre-fusion local scores are replaced by the fused score so the
	// returned sequence stays non-increasing.
	a := []Hit{{ID: "x", Score: 120}, {ID: "y", Score: 80}}
	b := []Hit{{ID: "y"}, {ID: "z"}}

	fused := fuseRRF(a, b)
	require.Len(t, fused, 3)
	for i, h := range fused {
		assert.Positive(t, h.Score, "fused[%d] must carry a score", i)
		if i > 0 {
			assert.GreaterOrEqual(t, fused[i-1].Score, h.Score)
		}
	}
	// y: rank 2 + rank 1, x: rank 1 only.
	rank1 := 1.0 / float64(rrfK+1)
	rank2 := 1.0 / float64(rrfK+2)
	assert.Equal(t, int((rank2+rank1)*fusedScoreScale), fused[0].Score)
	assert.Equal(t, int(rank1*fusedScoreScale), fused[1].Score)
}

type fakeAdapter struct {
	hits []live.Hit
	err  error
}

func (f *fakeAdapter) Name() string     { return "fake" }
func (f *fakeAdapter) IDPrefix() string { return "community-" }
func (f *fakeAdapter) Search(ctx context.Context, query string) ([]live.Hit, error) {
	return f.hits, f.err
}
func (f *fakeAdapter) GetByID(ctx context.Context, id string) (string, string, string, error) {
	return "", "", "", nil
}

func TestSearchOnlineFusion(t *testing.T) {
	reg := live.NewRegistry(&fakeAdapter{hits: []live.Hit{
		{ID: "community-1", Title: "Micro chart tips", URL: "https://x", Source: "fake"},
	}})
	e := NewEngine(nil, searchCatalog(t), nil, reg, time.Second)

	res, err := e.Search(context.Background(), "column micro chart", Options{IncludeOnline: true})
	require.NoError(t, err)

	sources := make(map[string]bool)
	for _, h := range res.Hits {
		sources[h.Source] = true
	}
	assert.True(t, sources["local"])
	assert.True(t, sources["fake"], "online hits must be fused in")
}

func TestSearchAdapterFailureDegrades(t *testing.T) {
	reg := live.NewRegistry(&fakeAdapter{err: errors.New("upstream timeout")})
	e := NewEngine(nil, searchCatalog(t), nil, reg, time.Second)

	res, err := e.Search(context.Background(), "column micro chart", Options{IncludeOnline: true})
	require.NoError(t, err, "a failing source must not fail the search")
	assert.NotEmpty(t, res.Hits, "local hits survive the failure")
	assert.Contains(t, res.Warnings, "source fake unavailable")
}
