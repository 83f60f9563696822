package paperless

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/paperless-concierge/internal/core/domain"
)

func TestSubmitDecodesBareStringTaskID(t *testing.T) {
	var gotAuth string
	var gotFilename string
	var gotContent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/documents/post_document/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" {
			t.Fatalf("expected multipart form, got %q (%v)", mediaType, err)
		}
		reader := multipart.NewReader(r.Body, params["boundary"])
		form, err := reader.ReadForm(1 << 20)
		if err != nil {
			t.Fatalf("read form: %v", err)
		}
		files := form.File["document"]
		if len(files) != 1 {
			t.Fatalf("expected one document part, got %d", len(files))
		}
		gotFilename = files[0].Filename
		part, _ := files[0].Open()
		raw, _ := io.ReadAll(part)
		gotContent = string(raw)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `"abc-123"`)
	}))
	defer server.Close()

	client := New(server.URL, "secret")
	taskID, err := client.Submit(context.Background(), "invoice.pdf", "application/pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if taskID != "abc-123" {
		t.Fatalf("expected task id abc-123, got %q", taskID)
	}
	if gotAuth != "Token secret" {
		t.Fatalf("expected token auth header, got %q", gotAuth)
	}
	if gotFilename != "invoice.pdf" {
		t.Fatalf("expected filename forwarded, got %q", gotFilename)
	}
	if gotContent != "pdf-bytes" {
		t.Fatalf("expected file content forwarded, got %q", gotContent)
	}
}

func TestSubmitDecodesObjectTaskID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"task_id":"def-456"}`)
	}))
	defer server.Close()

	client := New(server.URL, "secret")
	taskID, err := client.Submit(context.Background(), "note.txt", "text/plain", strings.NewReader("hi"))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if taskID != "def-456" {
		t.Fatalf("expected task id def-456, got %q", taskID)
	}
}

func TestSubmitUnsupportedMediaTypeIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "file type not supported", http.StatusUnsupportedMediaType)
	}))
	defer server.Close()

	client := New(server.URL, "secret")
	_, err := client.Submit(context.Background(), "virus.exe", "application/octet-stream", strings.NewReader("MZ"))
	if !domain.IsKind(err, domain.ErrRejected) {
		t.Fatalf("expected rejected kind, got %v", err)
	}
}

func TestSubmitConnectionFailureIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := New(server.URL, "secret")
	_, err := client.Submit(context.Background(), "doc.pdf", "application/pdf", strings.NewReader("x"))
	if !domain.IsKind(err, domain.ErrTransport) {
		t.Fatalf("expected transport kind, got %v", err)
	}
}

func TestTaskStatusMapsCeleryStates(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.JobStatus
	}{
		{"PENDING", domain.StatusQueued},
		{"RECEIVED", domain.StatusQueued},
		{"STARTED", domain.StatusProcessing},
		{"RETRY", domain.StatusProcessing},
		{"SUCCESS", domain.StatusCompleted},
		{"FAILURE", domain.StatusFailed},
		{"REVOKED", domain.StatusFailed},
		{"success", domain.StatusCompleted},
		{"SOMETHING_NEW", domain.StatusUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/tasks/task-1/" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprintf(w, `{"status":%q}`, tc.raw)
			}))
			defer server.Close()

			client := New(server.URL, "secret")
			status, err := client.TaskStatus(context.Background(), "task-1")
			if err != nil {
				t.Fatalf("TaskStatus() error = %v", err)
			}
			if status != tc.want {
				t.Fatalf("status %q: expected %s, got %s", tc.raw, tc.want, status)
			}
		})
	}
}

func TestTaskStatusNotFoundIsUnknownWithoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, "secret")
	status, err := client.TaskStatus(context.Background(), "gone")
	if err != nil {
		t.Fatalf("expected nil error for 404, got %v", err)
	}
	if status != domain.StatusUnknown {
		t.Fatalf("expected unknown status for 404, got %s", status)
	}
}

func TestSearchParsesPaginatedResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "tax 2025" {
			t.Errorf("expected query forwarded, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"count": 12,
			"results": [
				{"id": 1, "title": "Tax Return", "created": "2025-04-01"},
				{"id": 2, "title": "Tax Receipt", "created": "2025-03-15"}
			]
		}`)
	}))
	defer server.Close()

	client := New(server.URL, "secret")
	result, err := client.Search(context.Background(), "tax 2025")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.Total != 12 {
		t.Fatalf("expected total 12, got %d", result.Total)
	}
	if len(result.Documents) != 2 || result.Documents[0].Title != "Tax Return" {
		t.Fatalf("unexpected documents %+v", result.Documents)
	}
}

func TestServerErrorIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, "secret")
	_, err := client.Search(context.Background(), "anything")
	if !domain.IsKind(err, domain.ErrTransport) {
		t.Fatalf("expected transport kind for 502, got %v", err)
	}
}
