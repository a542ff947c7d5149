package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/smartclips/clipper/internal/blob"
	"github.com/smartclips/clipper/internal/stage"
)

func TestFetchAllStoresBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Body is the path, so each segment is distinguishable.
		_, _ = w.Write([]byte(r.URL.Path))
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/seg0.ts", srv.URL + "/seg1.ts", srv.URL + "/seg2.ts"}
	store := blob.NewStore()
	f := NewFetcher(5*time.Second, nil)

	results := f.FetchAll(context.Background(), store, urls)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, res := range results {
		if !res.Created {
			t.Fatalf("result %d failed: %s", i, res.Message)
		}
	}
	for i, url := range urls {
		body, err := store.Get(url)
		if err != nil {
			t.Fatalf("segment %d missing from store: %v", i, err)
		}
		want := strings.TrimPrefix(url, srv.URL)
		if string(body) != want {
			t.Errorf("segment %d body = %q, want %q", i, body, want)
		}
	}
}

func TestFetchAllBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "missing.ts") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/a.ts", srv.URL + "/missing.ts", srv.URL + "/b.ts"}
	store := blob.NewStore()
	f := NewFetcher(5*time.Second, nil)

	results := f.FetchAll(context.Background(), store, urls)

	if results[0].Created != true || results[2].Created != true {
		t.Fatalf("expected surrounding segments to succeed: %+v", results)
	}
	failed := results[1]
	if failed.Created {
		t.Fatal("expected 404 segment to fail")
	}
	if failed.Code != stage.CodeBadSegmentStatus {
		t.Errorf("code = %q, want %q", failed.Code, stage.CodeBadSegmentStatus)
	}
	if !strings.Contains(failed.Message, "404") {
		t.Errorf("message %q does not carry upstream status", failed.Message)
	}
	// A failed fetch writes nothing.
	if _, err := store.Get(urls[1]); err == nil {
		t.Error("failed segment must not be stored")
	}
}

func TestFetchAllTransportError(t *testing.T) {
	store := blob.NewStore()
	f := NewFetcher(time.Second, nil)

	results := f.FetchAll(context.Background(), store, []string{"http://127.0.0.1:1/unreachable.ts"})
	if results[0].Created {
		t.Fatal("expected transport error to fail")
	}
	if results[0].Code != "" {
		t.Errorf("transport errors carry no code, got %q", results[0].Code)
	}
	if results[0].Message != "server returned bad status: no status" {
		t.Errorf("message = %q, want %q", results[0].Message, "server returned bad status: no status")
	}
	if store.Len() != 0 {
		t.Errorf("store has %d entries, want 0", store.Len())
	}
}
