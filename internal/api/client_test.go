package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"taskcycle/internal/model"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, time.Second, 3, nil)
}

func TestListTasksDecodesPayload(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/tasks" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"t1","title":"Stretch","dueDate":"2024-03-20",
			 "recurrenceRule":{"type":"daily","interval":2}},
			{"id":"t2","title":"One-off","isComplete":true,
			 "completedAt":"2024-03-19T10:00:00Z"}
		]`))
	}))

	tasks, err := client.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Recurrence == nil || tasks[0].Recurrence.Type != model.RecurrenceDaily || tasks[0].Recurrence.Interval != 2 {
		t.Fatalf("recurrence not decoded: %+v", tasks[0].Recurrence)
	}
	if tasks[1].CompletedAt == nil || !tasks[1].IsComplete {
		t.Fatalf("completion not decoded: %+v", tasks[1])
	}
}

func TestInvalidWireIntervalsNormalizeToOne(t *testing.T) {
	for _, raw := range []string{`0`, `-3`, `1.5`} {
		var p rulePayload
		if err := json.Unmarshal([]byte(`{"type":"daily","interval":`+raw+`}`), &p); err != nil {
			t.Fatalf("decode rule: %v", err)
		}
		if got := normalizeInterval(p.Interval); got != 1 {
			t.Fatalf("interval %s normalized to %d, want 1", raw, got)
		}
	}
}

func TestUpdateConflictIsAlreadyComplete(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	_, err := client.UpdateTask(context.Background(), model.Task{ID: "t1", Title: "x"})
	if !errors.Is(err, ErrAlreadyComplete) {
		t.Fatalf("expected ErrAlreadyComplete, got %v", err)
	}
}

func TestUpdateRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int64
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		var p taskPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p)
	}))

	saved, err := client.UpdateTask(context.Background(), model.Task{ID: "t1", Title: "Stretch", IsComplete: true})
	if err != nil {
		t.Fatalf("update failed after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
	if !saved.IsComplete {
		t.Fatalf("echoed task lost completion flag")
	}
}

func TestUpdateGivesUpAfterRetryBudget(t *testing.T) {
	var calls atomic.Int64
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	_, err := client.UpdateTask(context.Background(), model.Task{ID: "t1", Title: "x"})
	if err == nil {
		t.Fatalf("expected exhaustion error")
	}
	if calls.Load() != 4 { // initial attempt + 3 retries
		t.Fatalf("expected 4 attempts, got %d", calls.Load())
	}
}

func TestCreateTaskPostsAndReturnsServerRecord(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tasks" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var p taskPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		p.ID = "server-assigned"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p)
	}))

	created, err := client.CreateTask(context.Background(), model.Task{Title: "New"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID != "server-assigned" {
		t.Fatalf("server id not adopted: %q", created.ID)
	}
}

func TestBadRequestIsNotRetried(t *testing.T) {
	var calls atomic.Int64
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	if _, err := client.UpdateTask(context.Background(), model.Task{ID: "t1"}); err == nil {
		t.Fatalf("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx must be terminal, got %d attempts", calls.Load())
	}
}
