package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/tasktrack/tasktrack-api/internal/core/domain"
	"github.com/tasktrack/tasktrack-api/internal/core/ports"
)

var alice = &domain.Principal{ID: 1, Username: "alice", Role: domain.RoleUser}

func TestTaskHandler_Create_WithAttachment(t *testing.T) {
	var gotOwner domain.Principal
	var gotIn ports.CreateTaskInput
	var data []byte
	svc := &stubTaskService{
		createFn: func(ctx context.Context, owner domain.Principal, in ports.CreateTaskInput) (*domain.Task, error) {
			gotOwner, gotIn = owner, in
			if in.Attachment != nil {
				data, _ = io.ReadAll(in.Attachment.Content)
			}
			return &domain.Task{
				ID:         1,
				Name:       in.Name,
				Attachment: "/uploads/attachments/attachment-1.txt",
				UserID:     owner.ID,
				CreatedAt:  fixedTime,
				UpdatedAt:  fixedTime,
			}, nil
		},
	}
	c, rec := newMultipartContext(t, "/tasks",
		map[string]string{"name": "Write report", "description": "quarterly"},
		"notes.txt", "text/plain", []byte("hello"), alice)

	if err := NewTaskHandler(svc).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if gotOwner.ID != 1 || gotIn.Name != "Write report" || gotIn.Description != "quarterly" {
		t.Fatalf("unexpected call: %+v %+v", gotOwner, gotIn)
	}
	if gotIn.Attachment == nil || gotIn.Attachment.Filename != "notes.txt" || string(data) != "hello" {
		t.Fatalf("unexpected attachment: %+v", gotIn.Attachment)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["userId"] != float64(1) || body["attachment"] != "/uploads/attachments/attachment-1.txt" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestTaskHandler_Create_WithoutAttachment(t *testing.T) {
	svc := &stubTaskService{
		createFn: func(ctx context.Context, owner domain.Principal, in ports.CreateTaskInput) (*domain.Task, error) {
			if in.Attachment != nil {
				t.Fatalf("expected no attachment")
			}
			return &domain.Task{ID: 2, Name: in.Name, UserID: owner.ID}, nil
		},
	}
	c, rec := newMultipartContext(t, "/tasks", map[string]string{"name": "Plain"}, "", "", nil, alice)

	if err := NewTaskHandler(svc).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestTaskHandler_Create_PropagatesServiceErrors(t *testing.T) {
	svc := &stubTaskService{
		createFn: func(ctx context.Context, owner domain.Principal, in ports.CreateTaskInput) (*domain.Task, error) {
			return nil, domain.ErrFileTooLarge
		},
	}
	c, _ := newMultipartContext(t, "/tasks", map[string]string{"name": "Big"}, "big.bin", "application/octet-stream", []byte("x"), alice)

	if err := NewTaskHandler(svc).Create(c); !errors.Is(err, domain.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestTaskHandler_List(t *testing.T) {
	svc := &stubTaskService{
		listFn: func(ctx context.Context) ([]*domain.Task, error) {
			return []*domain.Task{{ID: 1, Name: "a", UserID: 1}, {ID: 2, Name: "b", UserID: 2}}, nil
		},
	}
	c, rec := newJSONContext(http.MethodGet, "/tasks", "", alice)

	if err := NewTaskHandler(svc).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var body []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body) != 2 || body[1]["name"] != "b" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestTaskHandler_Update(t *testing.T) {
	var got ports.UpdateTaskInput
	svc := &stubTaskService{
		updateFn: func(ctx context.Context, id int64, in ports.UpdateTaskInput) (*domain.Task, error) {
			got = in
			return &domain.Task{ID: id, Name: *in.Name, UserID: 1}, nil
		},
	}
	c, rec := newJSONContext(http.MethodPatch, "/tasks/3", `{"name":"Renamed","description":""}`, alice)
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := NewTaskHandler(svc).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Description == nil || *got.Description != "" {
		t.Fatalf("expected description to be cleared, got %v", got.Description)
	}
}

func TestTaskHandler_GetAndDelete_NotFound(t *testing.T) {
	svc := &stubTaskService{
		getFn: func(ctx context.Context, id int64) (*domain.Task, error) {
			return nil, domain.ErrTaskNotFound
		},
		deleteFn: func(ctx context.Context, id int64) error {
			return domain.ErrTaskNotFound
		},
	}
	h := NewTaskHandler(svc)

	c, _ := newJSONContext(http.MethodGet, "/tasks/8", "", alice)
	c.SetParamNames("id")
	c.SetParamValues("8")
	if err := h.Get(c); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}

	c, _ = newJSONContext(http.MethodDelete, "/tasks/8", "", alice)
	c.SetParamNames("id")
	c.SetParamValues("8")
	if err := h.Delete(c); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}
