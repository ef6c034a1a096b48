package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&http.Client{Timeout: 5 * time.Second}, baseURL, "test-token", "test-agent")
}

const recentChangesAtom = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Recent changes</title>
  <entry><title>Primeira Página</title><id>1</id></entry>
  <entry><title>Segunda Página</title><id>2</id></entry>
  <entry><title>Primeira Página</title><id>3</id></entry>
</feed>`

func TestRecentlyChangedDeduplicatesTitles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/w/api.php" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("action") != "feedrecentchanges" || q.Get("feedformat") != "atom" {
			t.Errorf("Unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("hidebots") != "1" || q.Get("namespace") != "0" {
			t.Errorf("Expected bot edits hidden and main namespace only: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, recentChangesAtom)
	}))
	defer server.Close()

	titles, err := newTestClient(server.URL).RecentlyChanged(context.Background(), 24)
	if err != nil {
		t.Fatal(err)
	}

	if len(titles) != 2 {
		t.Fatalf("Expected 2 deduplicated titles, got %d: %v", len(titles), titles)
	}
	if titles[0] != "Primeira Página" || titles[1] != "Segunda Página" {
		t.Errorf("Unexpected titles: %v", titles)
	}
}

func TestFetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/w/rest.php/v1/page/P%C3%A1gina%2Fsub" {
			t.Errorf("Unexpected escaped path: %s", r.URL.EscapedPath())
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"title":  "Página/sub",
			"source": "conteúdo",
			"latest": map[string]any{"id": 42},
		})
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).FetchPage(context.Background(), "Página/sub")
	if err != nil {
		t.Fatal(err)
	}
	if page.Source != "conteúdo" {
		t.Errorf("Unexpected source: %s", page.Source)
	}
	if page.LatestID != 42 {
		t.Errorf("Unexpected latest id: %d", page.LatestID)
	}
}

func TestFetchPageNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchPage(context.Background(), "Inexistente")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSavePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", r.Method)
		}
		var payload editPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatal(err)
		}
		if payload.Latest.ID != 42 {
			t.Errorf("Expected latest id 42 in payload, got %d", payload.Latest.ID)
		}
		if payload.Comment != "Arquivamento de 1 URL" {
			t.Errorf("Unexpected comment: %s", payload.Comment)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"latest": map[string]any{"id": 43},
		})
	}))
	defer server.Close()

	page := &Page{Title: "Página", Source: "velho", LatestID: 42}
	revision, err := newTestClient(server.URL).SavePage(context.Background(), page, "novo", "Arquivamento de 1 URL")
	if err != nil {
		t.Fatal(err)
	}
	if revision != 43 {
		t.Errorf("Expected revision 43, got %d", revision)
	}
}

func TestSavePageConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	page := &Page{Title: "Página", LatestID: 42}
	_, err := newTestClient(server.URL).SavePage(context.Background(), page, "novo", "resumo")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}
}
