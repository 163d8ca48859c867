package evolution

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendTextRequestShape(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, APIKey: "k1", Instance: "coach", HTTP: srv.Client()}
	status, err := c.SendText(context.Background(), "5511988880001", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if status != http.StatusCreated {
		t.Fatalf("status %d", status)
	}
	if gotPath != "/message/sendText/coach" {
		t.Fatalf("path %q", gotPath)
	}
	if gotKey != "k1" {
		t.Fatalf("apikey header %q", gotKey)
	}
	if gotBody["number"] != "5511988880001" || gotBody["text"] != "hello" {
		t.Fatalf("body %v", gotBody)
	}
}

func TestSendDocumentDefaultsAndShape(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, APIKey: "k1", Instance: "coach", HTTP: srv.Client()}
	_, err := c.SendDocument(context.Background(), "5511988880001", "your plan",
		Attachment{URL: "https://files.example.com/plan.pdf"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotPath != "/message/sendMedia/coach" {
		t.Fatalf("path %q", gotPath)
	}
	if gotBody["mediatype"] != "document" || gotBody["caption"] != "your plan" {
		t.Fatalf("body %v", gotBody)
	}
	if gotBody["mimetype"] != "application/pdf" || gotBody["fileName"] != "document.pdf" {
		t.Fatalf("defaults not applied: %v", gotBody)
	}
	if gotBody["media"] != "https://files.example.com/plan.pdf" {
		t.Fatalf("media url %v", gotBody["media"])
	}
}

func TestNonSuccessStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid instance", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL, APIKey: "k1", Instance: "coach", HTTP: srv.Client()}
	status, err := c.SendText(context.Background(), "5511988880001", "hello")
	if err == nil {
		t.Fatalf("expected error on 401")
	}
	if status != http.StatusUnauthorized {
		t.Fatalf("status %d", status)
	}
}

func TestNetworkFailureIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := &Client{BaseURL: srv.URL, APIKey: "k1", Instance: "coach"}
	if _, err := c.SendText(context.Background(), "5511988880001", "hello"); err == nil {
		t.Fatalf("expected network error")
	}
}
