package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lolamo/lolamo/provider"
)

// stubProvider replays fixed increments and records the messages it saw.
type stubProvider struct {
	increments []string
	failAfter  int // emit this many increments, then error; -1 means never
	messages   []provider.Message
}

func (p *stubProvider) ChatStream(_ context.Context, messages []provider.Message, emit func(string) error) error {
	p.messages = messages
	for i, inc := range p.increments {
		if p.failAfter >= 0 && i >= p.failAfter {
			return errors.New("stream interrupted")
		}
		if err := emit(inc); err != nil {
			return err
		}
	}
	return nil
}

func (p *stubProvider) CreateEmbedding(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("not implemented")
}

func TestRespond_StreamsAndAppendsHistory(t *testing.T) {
	p := &stubProvider{increments: []string{"It", " is", " sunny."}, failAfter: -1}
	o := NewOrchestrator(p)
	history := &History{}

	var got []string
	err := o.Respond(context.Background(), "search the web for current weather in Paris", "No relevant context found.", history, func(delta string) error {
		got = append(got, delta)
		return nil
	})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("received %d increments, want 3", len(got))
	}
	if strings.Join(got, "") != "It is sunny." {
		t.Errorf("concatenated answer = %q, want %q", strings.Join(got, ""), "It is sunny.")
	}

	turns := history.Turns()
	if len(turns) != 2 {
		t.Fatalf("history has %d turns, want 2", len(turns))
	}
	if turns[0].Role != RoleUser || turns[0].Content != "search the web for current weather in Paris" {
		t.Errorf("first turn = %+v, want the user question", turns[0])
	}
	if turns[1].Role != RoleAssistant || turns[1].Content != "It is sunny." {
		t.Errorf("second turn = %+v, want the full answer", turns[1])
	}
}

func TestRespond_PromptLayout(t *testing.T) {
	p := &stubProvider{failAfter: -1}
	o := NewOrchestrator(p)
	history := &History{}
	history.Append(RoleUser, "earlier question")
	history.Append(RoleAssistant, "earlier answer")

	if err := o.Respond(context.Background(), "the question", "the context", history, func(string) error { return nil }); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	msgs := p.messages
	if len(msgs) != 4 {
		t.Fatalf("prompt has %d messages, want system + 2 history + question", len(msgs))
	}
	if msgs[0].Role != "system" || !strings.Contains(msgs[0].Content, "Lolamo") {
		t.Errorf("first message must be the persona instruction, got %+v", msgs[0])
	}
	if msgs[1].Content != "earlier question" || msgs[2].Content != "earlier answer" {
		t.Errorf("history turns not forwarded in order: %+v", msgs[1:3])
	}
	last := msgs[3]
	if last.Role != RoleUser {
		t.Errorf("final message role = %q, want user", last.Role)
	}
	if !strings.Contains(last.Content, "Context: the context") || !strings.Contains(last.Content, "Question: the question") {
		t.Errorf("final message missing context/question sections: %q", last.Content)
	}
}

func TestRespond_StreamErrorLeavesHistoryUntouched(t *testing.T) {
	p := &stubProvider{increments: []string{"partial", " answer"}, failAfter: 1}
	o := NewOrchestrator(p)
	history := &History{}

	var got []string
	err := o.Respond(context.Background(), "question", "context", history, func(delta string) error {
		got = append(got, delta)
		return nil
	})
	if err == nil {
		t.Fatal("mid-stream provider failure must propagate")
	}
	if history.Len() != 0 {
		t.Errorf("truncated answer must not be recorded, history has %d turns", history.Len())
	}
	if len(got) != 1 {
		t.Errorf("received %d increments before the failure, want 1", len(got))
	}
}

func TestRespond_EmitErrorStopsStream(t *testing.T) {
	p := &stubProvider{increments: []string{"a", "b", "c"}, failAfter: -1}
	o := NewOrchestrator(p)
	history := &History{}

	sentinel := errors.New("client gone")
	err := o.Respond(context.Background(), "q", "ctx", history, func(string) error { return sentinel })
	if !errors.Is(err, sentinel) {
		t.Fatalf("emit error must propagate, got %v", err)
	}
	if history.Len() != 0 {
		t.Errorf("history must stay empty when delivery fails, has %d turns", history.Len())
	}
}
