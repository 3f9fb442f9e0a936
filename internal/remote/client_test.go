package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arenahub/trackboard/internal/model"
)

func TestListTickets(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]model.Ticket{
			{ID: "t1", BoardID: "b1", Title: "alpha", Status: model.StatusTodo, Priority: model.PriorityHigh},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret", time.Second)
	tickets, err := c.ListTickets(context.Background(), "b1")
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}

	if gotPath != "/boards/b1/tickets" {
		t.Errorf("path = %q, want /boards/b1/tickets", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("auth header = %q, want Bearer secret", gotAuth)
	}
	if len(tickets) != 1 || tickets[0].Title != "alpha" {
		t.Errorf("tickets = %+v, want [alpha]", tickets)
	}
}

func TestCreateTicketPayload(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(model.Ticket{ID: "t1", BoardID: "b1", Title: "alpha"})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", time.Second)
	_, err := c.CreateTicket(context.Background(), TicketCreate{
		BoardID:  "b1",
		Title:    "alpha",
		Status:   model.StatusTodo,
		Priority: model.PriorityLow,
		TagIDs:   []string{"tag-1"},
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	if gotBody["board_id"] != "b1" {
		t.Errorf("board_id = %v, want b1", gotBody["board_id"])
	}
	if _, ok := gotBody["assignee_id"]; ok {
		t.Error("empty assignee_id serialized; want omitted")
	}
	if _, ok := gotBody["tag_ids"]; !ok {
		t.Error("tag_ids missing from payload")
	}
}

func TestPatchOmitsUnsetFields(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(model.Ticket{ID: "t1", Status: model.StatusDone})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", time.Second)
	status := model.StatusDone
	_, err := c.UpdateTicket(context.Background(), "t1", TicketPatch{Status: &status})
	if err != nil {
		t.Fatalf("UpdateTicket: %v", err)
	}

	if len(gotBody) != 1 {
		t.Errorf("payload = %v, want only the status field", gotBody)
	}
	if gotBody["status"] != "done" {
		t.Errorf("status = %v, want done", gotBody["status"])
	}
}

func TestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "ticket not found"})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", time.Second)
	err := c.DeleteTicket(context.Background(), "missing")
	if err == nil {
		t.Fatal("DeleteTicket() succeeded, want error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Message != "ticket not found" {
		t.Errorf("Message = %q, want server message", apiErr.Message)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound() = false, want true")
	}
}

func TestRetryOn429(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode([]model.Board{{ID: "b1", Name: "main"}})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", time.Second)
	boards, err := c.ListBoards(context.Background())
	if err != nil {
		t.Fatalf("ListBoards: %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if len(boards) != 1 {
		t.Errorf("boards = %+v, want one board", boards)
	}
}

func TestBaseURLTrailingSlash(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]model.Tag{})
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", "", time.Second)
	if _, err := c.ListTags(context.Background()); err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if gotPath != "/tags" {
		t.Errorf("path = %q, want /tags", gotPath)
	}
}
