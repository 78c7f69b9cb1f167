package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ArticlePublisher/internal/domain"
)

func TestPublishReportPostsSummary(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotChat = r.PostFormValue("chat_id")
		gotText = r.PostFormValue("text")
	}))
	defer srv.Close()

	n := NewNotifier("token", "42")
	n.baseURL = srv.URL

	report := domain.BatchReport{RunID: "run-1", Total: 1}
	report.Append(domain.PublishResult{Article: "Go generics", Platform: "csdn",
		Status: domain.StatusVerified, Success: true})

	if err := n.PublishReport(context.Background(), report); err != nil {
		t.Fatalf("publish report: %v", err)
	}
	if gotPath != "/bottoken/sendMessage" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotChat != "42" {
		t.Errorf("unexpected chat id %q", gotChat)
	}
	if !strings.Contains(gotText, "run-1") || !strings.Contains(gotText, "csdn") {
		t.Errorf("summary missing run details: %q", gotText)
	}
}

func TestPublishReportRejectsMisconfiguration(t *testing.T) {
	t.Parallel()

	n := NewNotifier("", "")
	if err := n.PublishReport(context.Background(), domain.BatchReport{}); err == nil {
		t.Fatal("expected an error without token and chat id")
	}
}

func TestPublishReportSurfacesAPIFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewNotifier("token", "42")
	n.baseURL = srv.URL

	if err := n.PublishReport(context.Background(), domain.BatchReport{}); err == nil {
		t.Fatal("expected an error on non-200 response")
	}
}
