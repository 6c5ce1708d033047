package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/lolamo/lolamo/provider"
)

const systemPrompt = "You are an AI named Lolamo (abbreviation of Local Language Model). " +
	"Use the provided context if it's relevant to answer the question with maximum information. " +
	"If no context is provided, rely on your own knowledge. " +
	"Cite sources when using context."

// Orchestrator builds the generation request from context, history and
// question, and streams the model's answer.
type Orchestrator struct {
	provider provider.Provider
	logger   *log.Logger
}

// NewOrchestrator creates an answer orchestrator over the given provider.
func NewOrchestrator(p provider.Provider) *Orchestrator {
	return &Orchestrator{
		provider: p,
		logger:   log.New(log.Writer(), "[CHAT] ", log.LstdFlags),
	}
}

// Respond streams the answer to question, invoking emit for every text
// increment. On clean completion the exchange is appended to history:
// first the user turn, then the assistant turn holding the concatenated
// answer. If the stream errors (including a non-nil return from emit),
// nothing is appended and the error is returned.
func (o *Orchestrator) Respond(ctx context.Context, question, contextStr string, history *History, emit func(delta string) error) error {
	messages := make([]provider.Message, 0, history.Len()+2)
	messages = append(messages, provider.Message{Role: "system", Content: systemPrompt})
	for _, t := range history.Turns() {
		messages = append(messages, provider.Message{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, provider.Message{
		Role:    RoleUser,
		Content: fmt.Sprintf("Context: %s\n\nQuestion: %s", contextStr, question),
	})

	var answer strings.Builder
	err := o.provider.ChatStream(ctx, messages, func(delta string) error {
		if err := emit(delta); err != nil {
			return err
		}
		answer.WriteString(delta)
		return nil
	})
	if err != nil {
		// A truncated answer must not be recorded as fact.
		return fmt.Errorf("generation: %w", err)
	}

	history.Append(RoleUser, question)
	history.Append(RoleAssistant, answer.String())
	return nil
}
