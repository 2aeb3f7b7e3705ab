// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jonathalimax/cortexia-app/internal/model"
	"github.com/jonathalimax/cortexia-app/internal/reachability"
)

// threadHandler fakes the OpenAI thread/run protocol.
func threadHandler(t *testing.T, hits map[string]int) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/assistants", func(w http.ResponseWriter, r *http.Request) {
		hits["assistants"]++
		var body AssistantBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Model == "" {
			t.Errorf("bad assistant body: %+v err=%v", body, err)
		}
		fmt.Fprint(w, `{"id":"asst_1","created_at":1}`)
	})

	mux.HandleFunc("POST /v1/threads", func(w http.ResponseWriter, r *http.Request) {
		hits["threads"]++
		fmt.Fprint(w, `{"id":"thread_1","created_at":2}`)
	})

	mux.HandleFunc("POST /v1/threads/thread_1/messages", func(w http.ResponseWriter, r *http.Request) {
		hits["messages"]++
		var body MessageBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Role != "user" {
			t.Errorf("bad message body: %+v err=%v", body, err)
		}
		fmt.Fprintf(w, `{
			"id": "msg_user",
			"thread_id": "thread_1",
			"role": "user",
			"content": [{"type": "text", "text": {"value": %q}}]
		}`, body.Content)
	})

	mux.HandleFunc("POST /v1/threads/thread_1/runs", func(w http.ResponseWriter, r *http.Request) {
		hits["runs"]++
		var body RunBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.AssistantID != "asst_1" || !body.Stream {
			t.Errorf("bad run body: %+v err=%v", body, err)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: thread.run.created\ndata: {\"id\":\"run_1\"}\n\n")
		fmt.Fprint(w, "event: thread.message.delta\ndata: {\"id\":\"msg_ai\"}\n\n")
		fmt.Fprint(w, "event: thread.message.completed\n")
		fmt.Fprint(w, `data: {"id":"msg_ai","thread_id":"thread_1","role":"assistant","content":[{"type":"text","text":{"value":"streamed answer"}}]}`)
		fmt.Fprint(w, "\n\n")
		fmt.Fprint(w, "event: done\ndata: [DONE]\n\n")
	})

	return mux
}

func collectStream(t *testing.T, events <-chan StreamEvent) []StreamEvent {
	t.Helper()
	var out []StreamEvent
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out
			}
			if ev.Err != nil {
				t.Fatalf("stream error: %v", ev.Err)
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("timed out waiting for stream events")
		}
	}
}

func TestChatStreamNewConversation(t *testing.T) {
	hits := map[string]int{}
	svc, _ := newTestService(t, threadHandler(t, hits), nil)

	events, err := svc.ChatStream(context.Background(), "hello", "gpt-4o", nil)
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	got := collectStream(t, events)

	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}

	wantIDs := model.ProviderIdentifiers{AssistantID: "asst_1", ThreadID: "thread_1"}
	for i, ev := range got {
		if ev.Identifiers != wantIDs {
			t.Errorf("event[%d] identifiers = %+v, want %+v", i, ev.Identifiers, wantIDs)
		}
	}

	if got[0].Response.Role != "user" || got[0].Response.Text() != "hello" {
		t.Errorf("initial event = %+v", got[0].Response)
	}
	if got[1].Response.Role != "assistant" || got[1].Response.Text() != "streamed answer" {
		t.Errorf("final event = %+v", got[1].Response)
	}

	msg := got[1].Response.AssistantMessage("c1")
	if msg.ID != "msg_ai" || msg.Sender != model.RoleAssistant || msg.Content != "streamed answer" {
		t.Errorf("assistant message = %+v", msg)
	}

	for _, path := range []string{"assistants", "threads", "messages", "runs"} {
		if hits[path] != 1 {
			t.Errorf("%s hits = %d, want 1", path, hits[path])
		}
	}
}

func TestChatStreamReusesIdentifiers(t *testing.T) {
	hits := map[string]int{}
	svc, _ := newTestService(t, threadHandler(t, hits), nil)

	ids := &model.ProviderIdentifiers{AssistantID: "asst_1", ThreadID: "thread_1"}
	events, err := svc.ChatStream(context.Background(), "follow up", "gpt-4o", ids)
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	got := collectStream(t, events)

	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	if hits["assistants"] != 0 || hits["threads"] != 0 {
		t.Errorf("created new conversation despite identifiers: %v", hits)
	}
}

func TestChatStreamUnreachableHost(t *testing.T) {
	svc, srv := newTestService(t, http.NotFoundHandler(), nil)
	svc.reach = reachability.NewChecker()
	srv.Close()

	_, err := svc.ChatStream(context.Background(), "hello", "gpt-4o", nil)
	if err == nil {
		t.Fatal("expected connectivity error, got nil")
	}
}
