package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/tend/config"
)

const resultsPage = `
<html><body>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fshop.example.com%2Fclock&rut=abc">Brass desk clock</a>
  <a class="result__snippet">A handsome clock for the office.</a>
</div>
<div class="result">
  <a class="result__a" href="https://books.example.com/cobol">COBOL history</a>
  <div class="result__snippet">The story of a language.</div>
</div>
<div class="result">
  <a class="result__a" href="javascript:void(0)">Ad</a>
</div>
<div class="result">
  <a class="result__a" href="https://third.example.com/">Third</a>
</div>
</body></html>`

func TestSearch(t *testing.T) {
	var gotQuery, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer server.Close()

	c := New(config.SearchConfig{Endpoint: server.URL + "/html/", MaxResults: 2, UserAgent: "tend-test", Timeout: time.Second}, server.Client())

	results, err := c.Search(context.Background(), "gift for clock lover")
	require.NoError(t, err)
	assert.Equal(t, "gift for clock lover", gotQuery)
	assert.Equal(t, "tend-test", gotUA)

	require.Len(t, results, 2)
	assert.Equal(t, Result{Title: "Brass desk clock", URL: "https://shop.example.com/clock", Snippet: "A handsome clock for the office."}, results[0])
	assert.Equal(t, "https://books.example.com/cobol", results[1].URL)
}

func TestSearchSkipsUnusableLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer server.Close()

	c := New(config.SearchConfig{Endpoint: server.URL, MaxResults: 10}, server.Client())
	results, err := c.Search(context.Background(), "x")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Third", results[2].Title)
}

func TestSearchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := New(config.SearchConfig{Endpoint: server.URL}, server.Client())
	_, err := c.Search(context.Background(), "x")
	assert.ErrorContains(t, err, "429")

	_, err = c.Search(context.Background(), "  ")
	assert.Error(t, err)
}
