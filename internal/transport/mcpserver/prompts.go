package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	codeReview := mcp.NewPrompt("code_review",
		mcp.WithPromptDescription("Review a workspace file for bugs, style, and design issues"),
		mcp.WithArgument("path",
			mcp.ArgumentDescription("Workspace-relative path of the file to review"),
			mcp.RequiredArgument(),
		),
	)
	s.server.AddPrompt(codeReview, s.promptCodeReview)

	debugAssistant := mcp.NewPrompt("debug_assistant",
		mcp.WithPromptDescription("Work through an error message against the workspace"),
		mcp.WithArgument("error",
			mcp.ArgumentDescription("The error message or stack trace to investigate"),
			mcp.RequiredArgument(),
		),
	)
	s.server.AddPrompt(debugAssistant, s.promptDebugAssistant)

	refactor := mcp.NewPrompt("refactor_suggestion",
		mcp.WithPromptDescription("Suggest a refactoring for a workspace file"),
		mcp.WithArgument("path",
			mcp.ArgumentDescription("Workspace-relative path of the file to refactor"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("What the refactoring should achieve"),
		),
	)
	s.server.AddPrompt(refactor, s.promptRefactorSuggestion)
}

func (s *Server) promptCodeReview(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	path := request.Params.Arguments["path"]
	if path == "" {
		return nil, fmt.Errorf("missing required argument: path")
	}
	content, err := s.gateway.ReadFile(ctx, path, false)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf(
		"Review the following file for correctness, style, and design issues. "+
			"Point at specific lines and suggest concrete fixes.\n\nFile: %s\n\n```\n%s\n```",
		path, content)
	return promptResult("Code review of "+path, text), nil
}

func (s *Server) promptDebugAssistant(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	errText := request.Params.Arguments["error"]
	if errText == "" {
		return nil, fmt.Errorf("missing required argument: error")
	}
	text := fmt.Sprintf(
		"Debug the following error against this workspace. Use search_code to find "+
			"the relevant source, read_file to inspect it, and run_command to reproduce "+
			"with the test runner if possible.\n\nError:\n%s",
		errText)
	return promptResult("Debugging session", text), nil
}

func (s *Server) promptRefactorSuggestion(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	path := request.Params.Arguments["path"]
	if path == "" {
		return nil, fmt.Errorf("missing required argument: path")
	}
	goal := request.Params.Arguments["goal"]
	if goal == "" {
		goal = "improve readability and maintainability"
	}
	content, err := s.gateway.ReadFile(ctx, path, false)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf(
		"Suggest a refactoring of the following file. Goal: %s. "+
			"Keep behavior identical and describe the change before showing code.\n\nFile: %s\n\n```\n%s\n```",
		goal, path, content)
	return promptResult("Refactor suggestion for "+path, text), nil
}

func promptResult(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}
