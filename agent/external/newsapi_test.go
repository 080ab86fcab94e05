package external

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	contractx "github.com/tanpawarit/Chative-Personal-Assistant/agent/contract"
)

func newNewsTestClient(t *testing.T, countries []string, handler http.HandlerFunc) *NewsClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewNewsClient(NewsConfig{APIKey: "key", BaseURL: srv.URL, Countries: countries})
	if err != nil {
		t.Fatalf("new news client: %v", err)
	}
	return client
}

func TestNewsSearchMergesCountriesNewestFirst(t *testing.T) {
	t.Parallel()

	client := newNewsTestClient(t, []string{"us", "GB"}, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "key" {
			t.Errorf("missing api key header")
		}
		if r.URL.Query().Get("category") != "technology" {
			t.Errorf("expected category query, got %s", r.URL.RawQuery)
		}
		country := r.URL.Query().Get("country")
		switch country {
		case "us":
			fmt.Fprint(w, `{"status":"ok","articles":[
				{"source":{"name":"US Wire"},"title":"us-old","url":"u1","publishedAt":"2024-05-01T08:00:00Z"},
				{"source":{"name":"US Daily"},"title":"us-new","url":"u2","publishedAt":"2024-05-03T08:00:00Z"}
			]}`)
		case "gb":
			fmt.Fprint(w, `{"status":"ok","articles":[
				{"source":{"name":"BBC"},"title":"gb-mid","url":"g1","publishedAt":"2024-05-02T08:00:00Z"},
				{"source":{"name":"Guardian"},"title":"gb-oldest","url":"g2","publishedAt":"2024-04-01T08:00:00Z"}
			]}`)
		default:
			t.Errorf("unexpected country %q", country)
		}
	})

	articles, err := client.Search(context.Background(), "technology")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != MaxArticles {
		t.Fatalf("expected %d articles, got %d", MaxArticles, len(articles))
	}
	wantTitles := []string{"us-new", "gb-mid", "us-old"}
	for i, title := range wantTitles {
		if articles[i].Title != title {
			t.Fatalf("article %d: got %q, want %q", i, articles[i].Title, title)
		}
	}
	if articles[1].Country != "gb" || articles[1].Source != "BBC" {
		t.Fatalf("unexpected article: %+v", articles[1])
	}
}

func TestNewsSearchUndatedArticlesSortLast(t *testing.T) {
	t.Parallel()

	client := newNewsTestClient(t, []string{"us"}, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok","articles":[
			{"source":{"name":"A"},"title":"garbled","publishedAt":"yesterday"},
			{"source":{"name":"B"},"title":"missing"},
			{"source":{"name":"C"},"title":"dated","publishedAt":"2024-05-01T08:00:00Z"}
		]}`)
	})

	articles, err := client.Search(context.Background(), "general")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantTitles := []string{"dated", "garbled", "missing"}
	if len(articles) != len(wantTitles) {
		t.Fatalf("expected %d articles, got %d", len(wantTitles), len(articles))
	}
	for i, title := range wantTitles {
		if articles[i].Title != title {
			t.Fatalf("article %d: got %q, want %q", i, articles[i].Title, title)
		}
	}
	if !articles[1].PublishedAt.IsZero() {
		t.Fatalf("expected zero publish time, got %v", articles[1].PublishedAt)
	}
}

func TestNewsSearchKeywordTopic(t *testing.T) {
	t.Parallel()

	client := newNewsTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("category") != "" || q.Get("q") != "climate change" || q.Get("country") != "us" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"status":"ok","articles":[]}`)
	})

	articles, err := client.Search(context.Background(), "climate change")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles) != 0 {
		t.Fatalf("expected no articles, got %d", len(articles))
	}
}

func TestNewsSearchErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "api error status", status: http.StatusOK, body: `{"status":"error","code":"apiKeyInvalid","message":"bad"}`, want: contractx.ErrExternalBadResponse},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, want: contractx.ErrExternalUnavailable},
		{name: "bad request", status: http.StatusBadRequest, body: `{}`, want: contractx.ErrExternalBadResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client := newNewsTestClient(t, []string{"us"}, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			})
			if _, err := client.Search(context.Background(), "general"); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestNormalizeCountries(t *testing.T) {
	t.Parallel()

	got, err := NormalizeCountries([]string{" US", "gb", "us", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "us" || got[1] != "gb" {
		t.Fatalf("unexpected countries: %v", got)
	}

	_, err = NormalizeCountries([]string{"xx"})
	if !errors.Is(err, ErrUnsupportedCountry) || !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected unsupported country validation error, got %v", err)
	}
}
