// Package mcp exposes the calendar to MCP clients as a set of tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"minical/internal/model"
	"minical/internal/service"
	"minical/internal/validate"
)

// NewServer creates an MCP server with tools for calendar operations.
func NewServer(svc *service.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"minical",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("list_categories",
			mcp.WithDescription("List all event categories with their id, name, emoji and hex color."),
		),
		handleListCategories(svc),
	)

	s.AddTool(
		mcp.NewTool("list_events",
			mcp.WithDescription("List all events in stored order, each annotated with its category."),
		),
		handleListEvents(svc),
	)

	s.AddTool(
		mcp.NewTool("create_event",
			mcp.WithDescription("Create an all-day event. Dates are YYYY-MM-DD and inclusive; endDate defaults to startDate."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Event title")),
			mcp.WithString("startDate", mcp.Required(), mcp.Description("First day of the event (YYYY-MM-DD)")),
			mcp.WithString("endDate", mcp.Description("Optional: last day of the event (YYYY-MM-DD)")),
			mcp.WithString("categoryId", mcp.Required(), mcp.Description("Id of an existing category, see list_categories")),
			mcp.WithString("description", mcp.Description("Optional: free-form notes, markdown allowed")),
		),
		handleCreateEvent(svc),
	)

	s.AddTool(
		mcp.NewTool("delete_event",
			mcp.WithDescription("Delete an event by id."),
			mcp.WithString("id", mcp.Required(), mcp.Description("The event id")),
		),
		handleDeleteEvent(svc),
	)

	s.AddTool(
		mcp.NewTool("month_grid",
			mcp.WithDescription("Get the 42-day month grid with the events on each day. Defaults to the current month."),
			mcp.WithNumber("year", mcp.Description("Optional: four-digit year")),
			mcp.WithNumber("month", mcp.Description("Optional: month number, 1-12")),
		),
		handleMonthGrid(svc),
	)

	return s
}

func handleListCategories(svc *service.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cats, err := svc.ListCategories()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list categories: %v", err)), nil
		}
		return jsonResult(cats)
	}
}

func handleListEvents(svc *service.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		events, err := svc.ListEvents()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list events: %v", err)), nil
		}
		return jsonResult(events)
	}
}

func handleCreateEvent(svc *service.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		p := validate.Payload{}
		for _, key := range []string{"title", "startDate", "endDate", "categoryId", "description"} {
			if v := req.GetString(key, ""); v != "" {
				p[key] = v
			}
		}

		ev, err := svc.CreateEvent(p)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(ev)
	}
}

func handleDeleteEvent(svc *service.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		removed, err := svc.DeleteEvent(id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(removed)
	}
}

func handleMonthGrid(svc *service.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m := model.MonthOf(svc.Today())
		if y := req.GetInt("year", 0); y != 0 {
			m.Year = y
		}
		if mo := req.GetInt("month", 0); mo != 0 {
			if mo < 1 || mo > 12 {
				return mcp.NewToolResultError("month must be between 1 and 12"), nil
			}
			m.Month = time.Month(mo)
		}

		view, err := svc.Month(m)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to build month: %v", err)), nil
		}
		return jsonResult(view)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
