// ABOUTME: MCP server subcommand
// ABOUTME: Exposes plans, tasks, follow-up scores and contacts over stdio
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/tend/handlers"
)

// NewMCPServer registers every tool, resource template and prompt.
func NewMCPServer(app *App, version string) *mcp.Server {
	now := handlers.Clock(app.Now)
	planHandlers := handlers.NewPlanHandlers(app.Plans, now)
	taskHandlers := handlers.NewTaskHandlers(app.Tasks, now)
	scoreHandlers := handlers.NewFollowUpHandlers(app.Scores, now)
	contactHandlers := handlers.NewContactHandlers(app.DB, now)
	resourceHandlers := handlers.NewResourceHandlers(app.Plans, app.Profiles, now)
	promptHandlers := handlers.NewPromptHandlers(app.Plans, app.Profiles, now)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "tend",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_action_plan",
		Description: "Generate today's relationship action plan for a user and build a task for every recommendation",
	}, planHandlers.GenerateActionPlan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_action_plan",
		Description: "Get today's action plan with its tasks",
	}, planHandlers.GetActionPlan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "calculate_follow_up_score",
		Description: "Score from 0 to 1 how urgently the user should reach out to a contact, without saving it",
	}, scoreHandlers.CalculateFollowUpScore)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_follow_up_score",
		Description: "Save a contact's follow-up score, either a manual value or a fresh calculation",
	}, scoreHandlers.UpdateFollowUpScore)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_task",
		Description: "Suggest and save a task for one contact, with drafted messages, content, questions or gifts",
	}, taskHandlers.BuildTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_task",
		Description: "Get a task with its suggested action and status",
	}, taskHandlers.GetTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_task",
		Description: "Complete, skip, snooze or flag a task as a bad suggestion",
	}, taskHandlers.UpdateTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a person to the user's network",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search the user's contacts by name",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_interaction",
		Description: "Record a message, call, meeting, email, event or note for a contact",
	}, contactHandlers.LogInteraction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "join_group",
		Description: "Add a contact to a group. Joining inner-5, central-50 or strategic-100 moves them between tiers",
	}, contactHandlers.JoinGroup)

	for _, t := range resourceHandlers.Templates() {
		server.AddResourceTemplate(t, resourceHandlers.ReadResource)
	}
	for _, p := range promptHandlers.Prompts() {
		server.AddPrompt(p, promptHandlers.GetPrompt)
	}

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, app *App, version string) error {
	app.Log.Info().Str("version", version).Msg("starting MCP server")
	return NewMCPServer(app, version).Run(ctx, &mcp.StdioTransport{})
}
