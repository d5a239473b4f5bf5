package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/finsage/finsage/internal/config"
	"github.com/finsage/finsage/internal/storage/sqlite"
)

// stepCapReply is returned to the caller when the tool loop runs out of
// steps without converging on an answer.
const stepCapReply = "I was unable to complete the request within the allowed number of reasoning steps. Try asking a narrower question."

// Chat runs one ReAct agent over the financial tool set and keeps
// per-session conversation history in the sqlite store. A Chat is safe
// for concurrent use; each Respond call is independent.
type Chat struct {
	agent  *react.Agent
	store  *sqlite.Store
	system *schema.Message
}

func NewChat(ctx context.Context, cfg *config.Config, toolSet []tool.BaseTool, store *sqlite.Store) (*Chat, error) {
	chatModel, err := NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}

	agent, err := react.NewAgent(ctx, &react.AgentConfig{
		MaxStep:          cfg.AgentMaxSteps,
		ToolCallingModel: chatModel,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: toolSet,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create react agent: %w", err)
	}

	system, err := BuildSystemMessage(ctx)
	if err != nil {
		return nil, err
	}

	return &Chat{agent: agent, store: store, system: system}, nil
}

// Respond answers one user turn. Prior turns of the same session are
// replayed before the new question; the session id decides which
// history applies, so distinct sessions never see each other's turns.
func (c *Chat) Respond(ctx context.Context, sessionID, userInput string) (string, error) {
	msgs := []*schema.Message{c.system}

	if sessionID != "" && c.store != nil {
		history, err := c.store.History(ctx, sessionID)
		if err != nil {
			return "", fmt.Errorf("load session %s: %w", sessionID, err)
		}
		msgs = append(msgs, history...)
	}
	msgs = append(msgs, schema.UserMessage(userInput))

	out, err := c.agent.Generate(ctx, msgs)
	if err != nil {
		if isStepCapError(err) {
			c.persist(ctx, sessionID, userInput, stepCapReply)
			return stepCapReply, nil
		}
		return "", fmt.Errorf("agent generate: %w", err)
	}

	c.persist(ctx, sessionID, userInput, out.Content)
	return out.Content, nil
}

func (c *Chat) persist(ctx context.Context, sessionID, userInput, reply string) {
	if sessionID == "" || c.store == nil {
		return
	}
	if err := c.store.Append(ctx, sessionID, string(schema.User), userInput); err != nil {
		log.Printf("persist user turn for session %s: %v", sessionID, err)
		return
	}
	if err := c.store.Append(ctx, sessionID, string(schema.Assistant), reply); err != nil {
		log.Printf("persist assistant turn for session %s: %v", sessionID, err)
	}
}

func isStepCapError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "max step")
}
