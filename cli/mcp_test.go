package cli

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServerRegistersEverything(t *testing.T) {
	app, _, _ := setupTestCLI(t)
	require.NoError(t, AddUserCommand(app, []string{"--name", "Ada"}))
	userID := onlyUser(t, app)
	ctx := context.Background()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	_, err := NewMCPServer(app, "test").Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer func() { _ = session.Close() }()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"generate_action_plan", "get_action_plan",
		"calculate_follow_up_score", "update_follow_up_score",
		"build_task", "get_task", "update_task",
		"add_contact", "find_contacts", "log_interaction", "join_group",
	}, names)

	templates, err := session.ListResourceTemplates(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, templates.ResourceTemplates, 2)

	prompts, err := session.ListPrompts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, prompts.Prompts, 2)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_action_plan",
		Arguments: map[string]any{"user_id": userID.String()},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
