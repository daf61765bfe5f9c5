package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newsServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchReturnsCappedArticles(t *testing.T) {
	srv := newsServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("tbm") != "nws" || q.Get("tbs") != "qdr:d" {
			t.Errorf("missing news/recency filters: %v", q)
		}
		fmt.Fprint(w, `{"news_results": [`)
		for i := 0; i < 12; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"title":"Article %d","source":"CoinDesk","date":"1 hour ago","snippet":"BTC up","link":"https://example.com/%d"}`, i, i)
		}
		fmt.Fprint(w, `]}`)
	})

	c := NewClient("key", WithBaseURL(srv.URL))
	articles, err := c.Search(context.Background(), "bitcoin")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(articles) != 10 {
		t.Fatalf("expected cap at 10 results, got %d", len(articles))
	}
	if articles[0].Title != "Article 0" || articles[0].Source != "CoinDesk" {
		t.Fatalf("unexpected article: %+v", articles[0])
	}
}

func TestSearchSubstitutesDefaultQuery(t *testing.T) {
	var gotQuery string
	srv := newsServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"news_results":[{"title":"t","source":"s","date":"d","snippet":"sn"}]}`)
	})

	c := NewClient("key", WithBaseURL(srv.URL))
	if _, err := c.Search(context.Background(), "   "); err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotQuery != DefaultQuery {
		t.Fatalf("expected default query, got %q", gotQuery)
	}
}

func TestFormattedSearchErrorMarking(t *testing.T) {
	srv := newsServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"Invalid API key"}`)
	})

	c := NewClient("bad-key", WithBaseURL(srv.URL))
	got := c.FormattedSearch(context.Background(), "bitcoin")
	if !strings.HasPrefix(got, "SerpAPI Error:") {
		t.Fatalf("expected error-marked string, got %q", got)
	}
	if !IsErrorResult(got) {
		t.Fatalf("IsErrorResult should detect provider errors")
	}
}

func TestFormattedSearchTransportFailure(t *testing.T) {
	srv := newsServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	c := NewClient("key", WithBaseURL(srv.URL))
	got := c.FormattedSearch(context.Background(), "bitcoin")
	if !strings.HasPrefix(got, "Error searching:") {
		t.Fatalf("expected transport error marker, got %q", got)
	}
	if !IsErrorResult(got) {
		t.Fatalf("IsErrorResult should detect transport errors")
	}
}

func TestFormattedSearchNoResultsSentinel(t *testing.T) {
	srv := newsServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"news_results":[]}`)
	})

	c := NewClient("key", WithBaseURL(srv.URL))
	got := c.FormattedSearch(context.Background(), "bitcoin")
	if got != NoResults {
		t.Fatalf("expected no-results sentinel, got %q", got)
	}
	if IsErrorResult(got) {
		t.Fatalf("sentinel must not be error-marked")
	}
}

func TestFormattedSearchFormatsArticles(t *testing.T) {
	srv := newsServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"news_results":[{"title":"BTC rallies","source":"Reuters","date":"2 hours ago","snippet":"up 5%","link":"https://example.com/a"},{"title":"No snippet article","source":"CNBC","date":"3 hours ago"}]}`)
	})

	c := NewClient("key", WithBaseURL(srv.URL))
	got := c.FormattedSearch(context.Background(), "bitcoin")
	if IsErrorResult(got) {
		t.Fatalf("unexpected error result: %q", got)
	}
	for _, want := range []string{
		"Title: BTC rallies",
		"Source: Reuters",
		"Link: https://example.com/a",
		"Snippet: N/A",
		"---",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("formatted block missing %q:\n%s", want, got)
		}
	}
}

func TestSearchRequiresAPIKey(t *testing.T) {
	c := NewClient("")
	if _, err := c.Search(context.Background(), "bitcoin"); err == nil {
		t.Fatalf("expected error without API key")
	}
}
