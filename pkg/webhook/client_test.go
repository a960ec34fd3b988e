package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/scribewise/scribewise/pkg/adapter"
	"github.com/scribewise/scribewise/pkg/normalize"
	"github.com/scribewise/scribewise/pkg/retry"
)

func testPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, Factor: 2}
}

func decodeRequest(t *testing.T, r *http.Request) Request {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("read request body: %v", err)
	}
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("unmarshal request body: %v", err)
	}
	return req
}

func TestInternalLinksShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if req.Function != FuncInternalLinks || req.URL != "https://example.com" {
			t.Errorf("unexpected request: %+v", req)
		}
		io.WriteString(w, `{"links":[{"url":"https://example.com/a","title":"A"},{"title":"no url"}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testPolicy(), nil)
	got, err := c.InternalLinks(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("InternalLinks: %v", err)
	}
	want := []normalize.InternalLink{{URL: "https://example.com/a", Title: "A"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("links mismatch (-want +got):\n%s", diff)
	}
}

func TestRankedKeywordsShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if req.Function != FuncRankedKeywords || req.Country != "us" || req.Language != "en" {
			t.Errorf("unexpected request: %+v", req)
		}
		io.WriteString(w, `[{"keyword":"solar","position":2,"search_volume":900}]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testPolicy(), nil)
	got, err := c.RankedKeywords(context.Background(), "https://example.com", "us", "en")
	if err != nil {
		t.Fatalf("RankedKeywords: %v", err)
	}
	if len(got) != 1 || got[0].Keyword != "solar" || got[0].Position != 2 {
		t.Fatalf("got %v, want the ranked keyword", got)
	}
}

func TestKeywordSuggestionsShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"suggestions":["solar roi","solar cost"]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testPolicy(), nil)
	got, err := c.KeywordSuggestions(context.Background(), "solar", "us", "en")
	if err != nil {
		t.Fatalf("KeywordSuggestions: %v", err)
	}
	want := []string{"solar roi", "solar cost"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyBodyIsEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testPolicy(), nil)

	links, err := c.InternalLinks(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("InternalLinks on empty body: %v", err)
	}
	if len(links) != 0 || links == nil {
		t.Fatalf("got %v, want empty non-nil slice", links)
	}

	suggestions, err := c.KeywordSuggestions(context.Background(), "seed", "us", "en")
	if err != nil {
		t.Fatalf("KeywordSuggestions on empty body: %v", err)
	}
	if len(suggestions) != 0 {
		t.Fatalf("got %v, want empty", suggestions)
	}
}

func TestServerErrorRetriedThenRecovers(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testPolicy(), nil)
	if _, err := c.RankedKeywords(context.Background(), "https://example.com", "us", "en"); err != nil {
		t.Fatalf("RankedKeywords: %v", err)
	}
	if calls != 2 {
		t.Fatalf("server saw %d calls, want 2 (one retry)", calls)
	}
}

func TestClientErrorNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testPolicy(), nil)
	_, err := c.InternalLinks(context.Background(), "https://example.com")

	var adapterErr *adapter.AdapterError
	if !errors.As(err, &adapterErr) || adapterErr.Status != http.StatusBadRequest {
		t.Fatalf("err = %v, want an adapter error with status 400", err)
	}
	if calls != 1 {
		t.Fatalf("server saw %d calls, want 1 (no retry on fatal status)", calls)
	}
}

func TestMalformedJSONSurfacesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{not json`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testPolicy(), nil)
	if _, err := c.InternalLinks(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestPassthroughReturnsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		if req.Function != FuncPassthrough {
			t.Errorf("function = %q, want passthrough", req.Function)
		}
		io.WriteString(w, "anything at all")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, testPolicy(), nil)
	got, err := c.Passthrough(context.Background(), Request{Keyword: "x"})
	if err != nil {
		t.Fatalf("Passthrough: %v", err)
	}
	if got != "anything at all" {
		t.Fatalf("got %q, want the raw body", got)
	}
}
