package api

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/kalambet/dietfit/internal/apiclient"
	"github.com/kalambet/dietfit/internal/profile"
	"github.com/kalambet/dietfit/internal/storage"
)

func newTestMCPDeps(t *testing.T) (MCPDeps, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	require.NoError(t, err, "opening store")
	t.Cleanup(func() { store.Close() })

	return MCPDeps{
		Profile:  &mockViewer{view: profile.View{User: apiclient.User{ID: 3, Email: "bo@example.com"}}},
		History:  store,
		Language: language.English,
	}, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "no content in result")
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func makeReadResourceRequest(uri string) mcp.ReadResourceRequest {
	return mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestMCPTool_ClassifyBMI(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpClassify(deps)

	result, err := handler(context.Background(), makeCallToolRequest("classify_bmi", map[string]interface{}{
		"height_cm": 165.0,
		"weight_kg": 75.0,
		"gender":    "female",
		"lang":      "es",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))

	var c Classification
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &c))
	assert.Equal(t, "female-overweight", c.Silhouette.Key)
	assert.Equal(t, "Sobrepeso", c.Silhouette.Label)
	assert.Equal(t, 27.55, c.BMI)
}

func TestMCPTool_ClassifyBMI_Invalid(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpClassify(deps)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"missing height", map[string]interface{}{"weight_kg": 70.0, "gender": "male"}, "height_cm is required"},
		{"bad gender", map[string]interface{}{"height_cm": 170.0, "weight_kg": 70.0, "gender": "x"}, "unknown gender"},
		{"zero weight", map[string]interface{}{"height_cm": 170.0, "weight_kg": 0.0, "gender": "male"}, "Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler(context.Background(), makeCallToolRequest("classify_bmi", tt.args))
			require.NoError(t, err)
			require.True(t, result.IsError, "expected error result")
			assert.Contains(t, toolText(t, result), tt.want)
		})
	}
}

func TestMCPTool_BodySilhouette(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	result, err := mcpSilhouette(deps)(context.Background(), makeCallToolRequest("body_silhouette", map[string]interface{}{
		"height_cm": 190.0,
		"weight_kg": 85.0,
		"gender":    "male",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))
	assert.Contains(t, toolText(t, result), `data-variant="male-normal"`)
}

func TestMCPTool_RecordMeasurement(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	result, err := mcpRecordMeasurement(deps)(context.Background(), makeCallToolRequest("record_measurement", map[string]interface{}{
		"height_cm": 170.0,
		"weight_kg": 90.0,
		"gender":    "male",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))

	ms, err := store.RecentMeasurements(10)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "obese", ms[0].Category)
	assert.Equal(t, 31.14, ms[0].BMI)
	assert.Equal(t, "male", ms[0].Gender)
	assert.Contains(t, toolText(t, result), ms[0].ID)
}

func TestMCPTool_Dashboard(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	result, err := mcpDashboard(deps)(context.Background(), makeCallToolRequest("my_dashboard", nil))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))
	assert.Contains(t, toolText(t, result), "bo@example.com")

	deps.Profile = &mockViewer{err: errors.New("backend down")}
	result, _ = mcpDashboard(deps)(context.Background(), makeCallToolRequest("my_dashboard", nil))
	require.True(t, result.IsError)
	assert.Contains(t, toolText(t, result), "backend down")
}

func TestMCPResource_History(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	for i := 0; i < 12; i++ {
		_, err := store.SaveMeasurement(storage.Measurement{HeightCm: 170, WeightKg: 60 + float64(i), Gender: "female", BMI: 22, Category: "normal"})
		require.NoError(t, err)
	}

	contents, err := mcpResourceHistory(deps)(context.Background(), makeReadResourceRequest("dietfit://history"))
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok, "expected TextResourceContents, got %T", contents[0])

	var entries []MeasurementJSON
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &entries))
	assert.Len(t, entries, mcpHistoryLimit)
}

func TestMCPResource_Dashboard(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	contents, err := mcpResourceDashboard(deps)(context.Background(), makeReadResourceRequest("dietfit://dashboard"))
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "dietfit://dashboard", tc.URI)
	assert.Equal(t, "application/json", tc.MIMEType)

	deps.Profile = &mockViewer{err: apiclient.ErrUnauthenticated}
	_, err = mcpResourceDashboard(deps)(context.Background(), makeReadResourceRequest("dietfit://dashboard"))
	assert.ErrorIs(t, err, apiclient.ErrUnauthenticated)
}

func TestNewMCPServer_OptionalDeps(t *testing.T) {
	full, _ := newTestMCPDeps(t)
	assert.NotNil(t, NewMCPServer(full))
	assert.NotNil(t, NewMCPServer(MCPDeps{Language: language.English}), "without optional deps")
}
