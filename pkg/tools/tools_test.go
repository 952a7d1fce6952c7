package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sap-docs/mcp-server/pkg/catalog"
	"github.com/sap-docs/mcp-server/pkg/live"
	"github.com/sap-docs/mcp-server/pkg/search"
)

func toolCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Bundle{{
		ID:   "/sapui5",
		Name: "SAPUI5",
		Documents: []catalog.Document{
			{ID: "/sapui5/column-micro-chart", Library: "/sapui5", Kind: catalog.KindGuide,
				Title: "Column Micro Chart", Description: "Chart basics", RelFile: "cmc.md"},
		},
	}})
	require.NoError(t, err)
	return c
}

func TestSearchToolExecute(t *testing.T) {
	engine := search.NewEngine(nil, toolCatalog(t), nil, nil, time.Second)
	tool := NewSearchTool(engine)

	res, err := tool.Execute(context.Background(), map[string]any{"query": "column micro chart", "k": 5})
	require.NoError(t, err)
	assert.Contains(t, res.Content, "/sapui5/column-micro-chart")

	structured, ok := res.Structured.(search.Result)
	require.True(t, ok)
	require.NotEmpty(t, structured.Hits)
	assert.GreaterOrEqual(t, structured.Hits[0].Score, 100)
}

func TestSearchToolValidation(t *testing.T) {
	engine := search.NewEngine(nil, toolCatalog(t), nil, nil, time.Second)
	tool := NewSearchTool(engine)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing query", map[string]any{}},
		{"blank query", map[string]any{"query": "  "}},
		{"k out of range", map[string]any{"query": "x", "k": 51}},
		{"negative k", map[string]any{"query": "x", "k": -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tool.Execute(context.Background(), tt.args)
			var verr *ValidationError
			assert.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
		})
	}
}

func TestSearchToolWeaklyTypedArgs(t *testing.T) {
	engine := search.NewEngine(nil, toolCatalog(t), nil, nil, time.Second)
	tool := NewSearchTool(engine)

	// JSON numbers arrive as float64; they must decode into k.
	_, err := tool.Execute(context.Background(), map[string]any{"query": "chart", "k": float64(3)})
	assert.NoError(t, err)
}

func TestFetchToolExecute(t *testing.T) {
	fetcher := catalog.NewFetcher(toolCatalog(t), nil, nil)
	tool := NewFetchTool(fetcher)

	// Missing file on disk is an IO error, so use an unknown id, which
	// must yield a not-found body rather than an error.
	res, err := tool.Execute(context.Background(), map[string]any{"id": "/sapui5/unknown"})
	require.NoError(t, err)
	assert.Contains(t, res.Content, "Document not found")

	_, err = tool.Execute(context.Background(), map[string]any{})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

type matrixStub struct{ hits []live.Hit }

func (m *matrixStub) Name() string     { return "abap-feature-matrix" }
func (m *matrixStub) IDPrefix() string { return "abap-fm-" }
func (m *matrixStub) Search(ctx context.Context, query string) ([]live.Hit, error) {
	return m.hits, nil
}
func (m *matrixStub) GetByID(ctx context.Context, id string) (string, string, string, error) {
	return "", "", "", nil
}

func TestFeatureMatrixToolLimit(t *testing.T) {
	stub := &matrixStub{hits: []live.Hit{
		{ID: "abap-fm-a", Title: "A"},
		{ID: "abap-fm-b", Title: "B"},
		{ID: "abap-fm-c", Title: "C"},
	}}
	tool := NewFeatureMatrixTool(stub)

	res, err := tool.Execute(context.Background(), map[string]any{"query": "cl_", "limit": 2})
	require.NoError(t, err)

	payload, ok := res.Structured.(struct {
		Results []live.Hit `json:"results"`
	})
	require.True(t, ok)
	assert.Len(t, payload.Results, 2)
}

func TestLiveToolsWithoutAdapter(t *testing.T) {
	// When live search is off the tools are still registered with a nil
	// adapter and must answer with empty results, not panic.
	fm := NewFeatureMatrixTool(nil)
	res, err := fm.Execute(context.Background(), map[string]any{"query": "cl_abap_conv"})
	require.NoError(t, err)
	assert.Contains(t, res.Content, `"results":[]`)

	cs := NewCommunitySearchTool(nil)
	res, err = cs.Execute(context.Background(), map[string]any{"query": "odata"})
	require.NoError(t, err)
	assert.Contains(t, res.Content, `"results":[]`)
}

func TestCommunitySearchToolValidation(t *testing.T) {
	tool := NewCommunitySearchTool(&matrixStub{})
	_, err := tool.Execute(context.Background(), map[string]any{"query": ""})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestRegistry(t *testing.T) {
	engine := search.NewEngine(nil, toolCatalog(t), nil, nil, time.Second)
	reg := NewRegistry()
	reg.Register(NewSearchTool(engine))
	reg.Register(NewFetchTool(catalog.NewFetcher(toolCatalog(t), nil, nil)))
	reg.Register(NewFeatureMatrixTool(&matrixStub{}))
	reg.Register(NewCommunitySearchTool(&matrixStub{}))

	infos := reg.List()
	require.Len(t, infos, 4)
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
		assert.NotNil(t, info.InputSchema, "%s must declare an input schema", info.Name)
	}
	assert.Equal(t, []string{"community_search", "feature_matrix", "fetch", "search"}, names)

	_, err := reg.Execute(context.Background(), "nope", nil)
	assert.Error(t, err)
}
