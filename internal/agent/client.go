package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// ToolWebSearch is the function tool the assistant calls to ground answers.
const ToolWebSearch = "web_search"

// DefaultModel is used when the configuration does not name one.
const DefaultModel = "gpt-4o"

// Config holds the agent parameters.
type Config struct {
	// Endpoint is the base URL of the OpenAI-compatible API, including any
	// version prefix. Empty means the public endpoint.
	Endpoint string
	// APIKey authenticates against the endpoint.
	APIKey string
	// Name of an existing assistant to reuse. When no assistant carries
	// this name, a fresh one is created with a generated unique name.
	Name string
	// Instructions is the system prompt for newly created assistants.
	Instructions string
	// Model defaults to DefaultModel.
	Model string
	// PollInterval between run status checks. Zero means one second.
	PollInterval time.Duration
}

// Result bundles the agent's final answer with the URLs it grounded on.
type Result struct {
	Response  string   `json:"response"`
	Citations []string `json:"citations"`
}

// Client drives the assistant lifecycle for grounded searches: resolve the
// assistant, run the query in a fresh thread, execute web_search tool calls
// against the connection, read the final message, then delete the thread and
// the assistant no matter how the run went.
type Client struct {
	api          *openai.Client
	connection   *Connection
	cfg          Config
	pollInterval time.Duration
	logger       zerolog.Logger
}

// NewClient connects to the endpoint in cfg and grounds tool calls on
// connection.
func NewClient(cfg Config, connection *Connection, logger zerolog.Logger) *Client {
	transport := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		transport.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &Client{
		api:          openai.NewClientWithConfig(transport),
		connection:   connection,
		cfg:          cfg,
		pollInterval: interval,
		logger:       logger,
	}
}

// Search asks the agent to answer query grounded in web search results. The
// returned citations merge the final message's url_citation annotations with
// every URL the web_search tool surfaced during the run.
func (c *Client) Search(ctx context.Context, query string) (*Result, error) {
	assistant, err := c.ensureAssistant(ctx)
	if err != nil {
		return nil, err
	}

	var threadID string
	defer func() { c.cleanup(threadID, assistant.ID) }()

	thread, err := c.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	threadID = thread.ID
	c.logger.Info().Str("thread", threadID).Msg("created thread")

	if _, err := c.api.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: query,
	}); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	run, err := c.api.CreateRun(ctx, threadID, openai.RunRequest{AssistantID: assistant.ID})
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	toolURLs, err := c.awaitRun(ctx, threadID, run)
	if err != nil {
		return nil, err
	}

	text, annotations, err := c.lastAssistantMessage(ctx, threadID)
	if err != nil {
		return nil, err
	}

	return &Result{
		Response:  text,
		Citations: mergeURLs(CitationURLs(annotations), toolURLs),
	}, nil
}

// ensureAssistant returns the assistant named in the configuration, creating
// one with the web_search tool when no match exists.
func (c *Client) ensureAssistant(ctx context.Context) (openai.Assistant, error) {
	if c.cfg.Name != "" {
		limit := 100
		list, err := c.api.ListAssistants(ctx, &limit, nil, nil, nil)
		if err != nil {
			return openai.Assistant{}, fmt.Errorf("list assistants: %w", err)
		}
		for _, a := range list.Assistants {
			if a.Name != nil && *a.Name == c.cfg.Name {
				return a, nil
			}
		}
	}

	name := uniqueAssistantName("Agent")
	instructions := c.cfg.Instructions
	c.logger.Info().Str("name", name).Str("model", c.cfg.Model).Msg("creating assistant")

	assistant, err := c.api.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        c.cfg.Model,
		Name:         &name,
		Instructions: &instructions,
		Tools:        []openai.AssistantTool{webSearchTool()},
	})
	if err != nil {
		return openai.Assistant{}, fmt.Errorf("create assistant: %w", err)
	}
	c.logger.Info().Str("assistant", assistant.ID).Msg("created assistant")
	return assistant, nil
}

// awaitRun polls the run until it reaches a terminal state, executing tool
// calls as they come up. It returns the URLs surfaced by the web_search tool.
func (c *Client) awaitRun(ctx context.Context, threadID string, run openai.Run) ([]string, error) {
	var toolURLs []string
	for {
		switch run.Status {
		case openai.RunStatusCompleted:
			return toolURLs, nil

		case openai.RunStatusRequiresAction:
			urls, next, err := c.executeToolCalls(ctx, threadID, run)
			if err != nil {
				return nil, err
			}
			toolURLs = append(toolURLs, urls...)
			run = next

		case openai.RunStatusQueued, openai.RunStatusInProgress, openai.RunStatusCancelling:
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pollInterval):
			}
			next, err := c.api.RetrieveRun(ctx, threadID, run.ID)
			if err != nil {
				return nil, fmt.Errorf("retrieve run: %w", err)
			}
			run = next

		case openai.RunStatusFailed:
			if run.LastError != nil {
				return nil, fmt.Errorf("agent run failed: %s: %s", run.LastError.Code, run.LastError.Message)
			}
			return nil, errors.New("agent run failed")

		default:
			return nil, fmt.Errorf("agent run ended with status %q", run.Status)
		}
	}
}

func (c *Client) executeToolCalls(ctx context.Context, threadID string, run openai.Run) ([]string, openai.Run, error) {
	if run.RequiredAction == nil || run.RequiredAction.SubmitToolOutputs == nil {
		return nil, run, errors.New("agent run requires action but carries no tool calls")
	}

	calls := run.RequiredAction.SubmitToolOutputs.ToolCalls
	outputs := make([]openai.ToolOutput, 0, len(calls))
	var urls []string
	for _, call := range calls {
		output, callURLs := c.executeToolCall(ctx, call)
		urls = append(urls, callURLs...)
		outputs = append(outputs, openai.ToolOutput{ToolCallID: call.ID, Output: output})
	}

	next, err := c.api.SubmitToolOutputs(ctx, threadID, run.ID, openai.SubmitToolOutputsRequest{
		ToolOutputs: outputs,
	})
	if err != nil {
		return nil, run, fmt.Errorf("submit tool outputs: %w", err)
	}
	return urls, next, nil
}

// executeToolCall runs one tool call and encodes the outcome for the model.
// Tool failures are reported back as an error payload instead of failing the
// whole run.
func (c *Client) executeToolCall(ctx context.Context, call openai.ToolCall) (string, []string) {
	if call.Function.Name != ToolWebSearch {
		return toolError(fmt.Sprintf("unknown tool %q", call.Function.Name)), nil
	}

	var args struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return toolError("malformed tool arguments"), nil
	}

	results, err := c.connection.Search(ctx, args.Query, args.Limit)
	if err != nil {
		c.logger.Error().Err(err).Str("query", args.Query).Msg("web search tool failed")
		return toolError(err.Error()), nil
	}

	encoded, err := json.Marshal(results)
	if err != nil {
		return toolError("cannot encode search results"), nil
	}

	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.URL)
	}
	return string(encoded), urls
}

func toolError(message string) string {
	encoded, _ := json.Marshal(map[string]string{"error": message})
	return string(encoded)
}

// lastAssistantMessage returns the newest assistant message's text and the
// annotations attached to it.
func (c *Client) lastAssistantMessage(ctx context.Context, threadID string) (string, []any, error) {
	limit := 20
	order := "desc"
	list, err := c.api.ListMessage(ctx, threadID, &limit, &order, nil, nil)
	if err != nil {
		return "", nil, fmt.Errorf("list messages: %w", err)
	}

	for _, msg := range list.Messages {
		if msg.Role != openai.ChatMessageRoleAssistant {
			continue
		}
		var parts []string
		var annotations []any
		for _, content := range msg.Content {
			if content.Text == nil {
				continue
			}
			parts = append(parts, content.Text.Value)
			annotations = append(annotations, content.Text.Annotations...)
		}
		return strings.Join(parts, "\n"), annotations, nil
	}
	return "", nil, errors.New("agent produced no assistant message")
}

// cleanup deletes the thread and the assistant. It runs detached from the
// request context so a cancelled search still releases its resources.
func (c *Client) cleanup(threadID, assistantID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if threadID != "" {
		c.logger.Info().Str("thread", threadID).Msg("deleting thread")
		if _, err := c.api.DeleteThread(ctx, threadID); err != nil {
			c.logger.Error().Err(err).Str("thread", threadID).Msg("failed to delete thread")
		}
	}
	if assistantID != "" {
		c.logger.Info().Str("assistant", assistantID).Msg("deleting assistant")
		if _, err := c.api.DeleteAssistant(ctx, assistantID); err != nil {
			c.logger.Error().Err(err).Str("assistant", assistantID).Msg("failed to delete assistant")
		}
	}
}

func webSearchTool() openai.AssistantTool {
	return openai.AssistantTool{
		Type: openai.AssistantToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        ToolWebSearch,
			Description: "Search the web for current information. Returns a JSON array of results with title, url and snippet fields.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "The search query."},
					"limit": {"type": "integer", "minimum": 1, "maximum": 20, "description": "Maximum number of results."}
				},
				"required": ["query"]
			}`),
		},
	}
}

// uniqueAssistantName builds a collision-resistant name from a timestamp and
// a short random suffix.
func uniqueAssistantName(prefix string) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return fmt.Sprintf("%s%d%s", prefix, time.Now().Unix(), suffix)
}
