// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package network

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// TRANSPORT TESTS
// =============================================================================

func TestTransportDo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	tr := NewTransport()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	body, err := tr.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %q, want %q", body, `{"ok":true}`)
	}
}

func TestTransportDoErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	tr := NewTransport()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)

	_, err := tr.Do(context.Background(), req)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T: %v", err, err)
	}
	if httpErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", httpErr.StatusCode)
	}
	if !strings.Contains(httpErr.Body, "bad key") {
		t.Errorf("Body = %q, should contain error payload", httpErr.Body)
	}
}

func TestTransportStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("Accept = %q, want text/event-stream", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: hello\n\n"))
	}))
	defer server.Close()

	tr := NewTransport()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL, nil)

	body, err := tr.Stream(context.Background(), req)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("failed to read stream: %v", err)
	}
	if string(data) != "data: hello\n\n" {
		t.Errorf("stream = %q", data)
	}
}

func TestTransportStreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such thread"))
	}))
	defer server.Close()

	tr := NewTransport()
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL, nil)

	_, err := tr.Stream(context.Background(), req)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", httpErr.StatusCode)
	}
}

// =============================================================================
// SSE READER TESTS
// =============================================================================

func TestSSEReaderReadEvent(t *testing.T) {
	input := "data: first\n\nevent: thread.message.completed\ndata: {\"id\":\"m1\"}\n\ndata: done\n\n"
	reader := NewSSEReader(strings.NewReader(input))

	eventType, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("first event: %v", err)
	}
	if eventType != "" || string(data) != "first" {
		t.Errorf("first event = (%q, %q)", eventType, data)
	}

	eventType, data, err = reader.ReadEvent()
	if err != nil {
		t.Fatalf("second event: %v", err)
	}
	if eventType != "thread.message.completed" {
		t.Errorf("eventType = %q, want thread.message.completed", eventType)
	}
	if string(data) != `{"id":"m1"}` {
		t.Errorf("data = %q", data)
	}

	eventType, data, err = reader.ReadEvent()
	if err != nil {
		t.Fatalf("third event: %v", err)
	}
	if string(data) != "done" {
		t.Errorf("data = %q, want done", data)
	}

	if _, _, err := reader.ReadEvent(); err != io.EOF {
		t.Errorf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestSSEReaderCRLF(t *testing.T) {
	input := "data: hello\r\n\r\n"
	reader := NewSSEReader(strings.NewReader(input))

	_, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("data = %q, want hello", data)
	}
}

func TestSSEReaderEventWithoutTrailingBlank(t *testing.T) {
	// A stream that ends mid-event still yields the buffered data.
	input := "data: partial"
	reader := NewSSEReader(strings.NewReader(input))

	_, data, err := reader.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent: %v", err)
	}
	if string(data) != "partial" {
		t.Errorf("data = %q, want partial", data)
	}
}
