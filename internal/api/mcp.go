package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/text/language"

	"github.com/kalambet/dietfit/internal/bmi"
	"github.com/kalambet/dietfit/internal/silhouette"
)

const mcpHistoryLimit = 10

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Profile  ProfileViewer    // optional; my_dashboard is not registered when nil
	History  MeasurementStore // optional; record_measurement and dietfit://history need it
	Language language.Tag
}

// NewMCPServer creates an MCP server with the dietfit tools and resources.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"dietfit",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("dietfit: BMI classification, body silhouettes and the signed-in user's health dashboard."),
		server.WithRecovery(),
	)

	measurementArgs := []mcp.ToolOption{
		mcp.WithNumber("height_cm", mcp.Description("Height in centimetres"), mcp.Required()),
		mcp.WithNumber("weight_kg", mcp.Description("Weight in kilograms"), mcp.Required()),
		mcp.WithString("gender", mcp.Description("male or female"), mcp.Required(), mcp.Enum("male", "female")),
		mcp.WithString("lang", mcp.Description("Label language (en, de, es)")),
	}

	s.AddTool(
		mcp.NewTool("classify_bmi", append([]mcp.ToolOption{
			mcp.WithDescription("Compute BMI from height and weight and return its category, color, label and silhouette variant."),
		}, measurementArgs...)...),
		mcpClassify(deps),
	)

	s.AddTool(
		mcp.NewTool("body_silhouette", append([]mcp.ToolOption{
			mcp.WithDescription("Render the body silhouette for a height and weight as an SVG document."),
		}, measurementArgs...)...),
		mcpSilhouette(deps),
	)

	if deps.History != nil {
		s.AddTool(
			mcp.NewTool("record_measurement", append([]mcp.ToolOption{
				mcp.WithDescription("Classify a measurement and append it to the local history."),
			}, measurementArgs...)...),
			mcpRecordMeasurement(deps),
		)

		s.AddResource(
			mcp.NewResource(
				"dietfit://history",
				"Measurement History",
				mcp.WithResourceDescription("Last 10 locally recorded measurements"),
				mcp.WithMIMEType("application/json"),
			),
			mcpResourceHistory(deps),
		)
	}

	if deps.Profile != nil {
		s.AddTool(
			mcp.NewTool("my_dashboard",
				mcp.WithDescription("Return the signed-in user's profile, health metrics and silhouette."),
			),
			mcpDashboard(deps),
		)

		s.AddResource(
			mcp.NewResource(
				"dietfit://dashboard",
				"Dashboard",
				mcp.WithResourceDescription("Current user dashboard as JSON"),
				mcp.WithMIMEType("application/json"),
			),
			mcpResourceDashboard(deps),
		)
	}

	return s
}

// toolClassify parses the shared measurement arguments and classifies them.
// A non-nil result is the error to hand back to the caller.
func toolClassify(deps MCPDeps, req mcp.CallToolRequest) (silhouette.BodyMetrics, Classification, *mcp.CallToolResult) {
	height, err := req.RequireFloat("height_cm")
	if err != nil {
		return silhouette.BodyMetrics{}, Classification{}, mcpError("height_cm is required")
	}
	weight, err := req.RequireFloat("weight_kg")
	if err != nil {
		return silhouette.BodyMetrics{}, Classification{}, mcpError("weight_kg is required")
	}
	g, err := silhouette.ParseGender(req.GetString("gender", ""))
	if err != nil {
		return silhouette.BodyMetrics{}, Classification{}, mcpError(err.Error())
	}
	tag := deps.Language
	if l := req.GetString("lang", ""); l != "" {
		tag = MatchLanguage(l, deps.Language)
	}

	m := silhouette.BodyMetrics{HeightCm: height, WeightKg: weight, Gender: g}
	c, err := Classify(m, tag)
	if errors.Is(err, bmi.ErrInvalidMeasurement) {
		p := placeholder(tag)
		return m, Classification{}, mcpError(fmt.Sprintf("%s: %v", p.Label, err))
	}
	if err != nil {
		return m, Classification{}, mcpError(err.Error())
	}
	return m, c, nil
}

func mcpClassify(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		_, c, res := toolClassify(deps, req)
		if res != nil {
			return res, nil
		}
		return mcpJSON(c), nil
	}
}

func mcpSilhouette(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		_, c, res := toolClassify(deps, req)
		if res != nil {
			return res, nil
		}
		var buf bytes.Buffer
		if err := silhouette.Render(&buf, c.Silhouette); err != nil {
			return mcpError(fmt.Sprintf("rendering silhouette: %v", err)), nil
		}
		return mcpText(buf.String()), nil
	}
}

func mcpRecordMeasurement(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m, c, res := toolClassify(deps, req)
		if res != nil {
			return res, nil
		}
		saved, err := deps.History.SaveMeasurement(NewMeasurement(m, c))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to save: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Recorded measurement %s: BMI %s (%s)", saved.ID, c.BMIText, c.Silhouette.Label)), nil
	}
}

func mcpDashboard(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		v, err := deps.Profile.Get(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("loading dashboard: %v", err)), nil
		}
		return mcpJSON(v), nil
	}
}

func mcpResourceDashboard(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		v, err := deps.Profile.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading dashboard: %w", err)
		}
		return jsonResource(req.Params.URI, v)
	}
}

func mcpResourceHistory(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ms, err := deps.History.RecentMeasurements(mcpHistoryLimit)
		if err != nil {
			return nil, fmt.Errorf("listing measurements: %w", err)
		}
		return jsonResource(req.Params.URI, measurementsJSON(ms))
	}
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

func mcpJSON(v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return mcpText(string(b))
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
