package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpattn/gamesetl/internal/domain"
)

const catalogueBody = `[
  {"id": 1, "name": "Zelda", "genre": ["Action", "Adventure"], "platforms": ["Switch", "Wii U"], "releaseYear": 2017},
  {"id": 2, "name": "#Mario#", "genre": "Platformer", "platforms": [], "releaseYear": "TBA"},
  {"id": "x", "name": "Broken"},
  {"id": 4, "name": null, "releaseYear": 2019.0},
  {"id": 5, "name": "Kirby"}
]`

func newCatalogueServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClientFetchNormalizesFields(t *testing.T) {
	server := newCatalogueServer(t, http.StatusOK, catalogueBody)
	client := NewClient(ClientConfig{URL: server.URL})

	records, err := client.Fetch(context.Background(), 20)
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records (non-integer id skipped), got %d: %+v", len(records), records)
	}

	want := domain.Record{ID: 1, Name: "Zelda", Genre: "Action, Adventure", Platforms: "Switch, Wii U", Year: "2017"}
	if records[0] != want {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Platforms != domain.DefaultSentinel {
		t.Fatalf("expected empty list to become sentinel, got %q", records[1].Platforms)
	}
	if records[1].Year != "TBA" {
		t.Fatalf("expected placeholder year to pass through, got %q", records[1].Year)
	}
	if records[2].Name != domain.DefaultSentinel || records[2].Genre != domain.DefaultSentinel {
		t.Fatalf("expected missing fields to become sentinel: %+v", records[2])
	}
	if records[2].Year != "2019" {
		t.Fatalf("expected integral float year without fraction, got %q", records[2].Year)
	}
}

func TestClientFetchHonoursLimit(t *testing.T) {
	server := newCatalogueServer(t, http.StatusOK, catalogueBody)
	client := NewClient(ClientConfig{URL: server.URL})

	records, err := client.Fetch(context.Background(), 2)
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	if len(records) != 2 || records[1].ID != 2 {
		t.Fatalf("expected the first two items, got %+v", records)
	}
}

func TestClientFetchSoftFailsOnNonSuccess(t *testing.T) {
	server := newCatalogueServer(t, http.StatusInternalServerError, `{"error":"down"}`)
	client := NewClient(ClientConfig{URL: server.URL})

	records, err := client.Fetch(context.Background(), 20)
	if err != nil {
		t.Fatalf("expected soft failure, got error: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", records)
	}
}

func TestClientFetchRejectsMalformedBody(t *testing.T) {
	server := newCatalogueServer(t, http.StatusOK, `{"not":"an array"}`)
	client := NewClient(ClientConfig{URL: server.URL})

	if _, err := client.Fetch(context.Background(), 20); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestClientFetchTransportError(t *testing.T) {
	client := NewClient(ClientConfig{URL: "http://127.0.0.1:1/games"})
	if _, err := client.Fetch(context.Background(), 20); err == nil {
		t.Fatalf("expected transport error")
	}
}
