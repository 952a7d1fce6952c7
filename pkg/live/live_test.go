package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"Fiori &amp; Elements", "Fiori & Elements"},
		{"plain text", "plain text"},
		{"<div>a</div><div>b</div>", "a b"},
		{"&lt;not a tag&gt;", "<not a tag>"},
		{"<style>.x{color:red}</style><p>Real content</p>", "Real content"},
		{"<script type=\"text/javascript\">var secret = 42;\ndoStuff();</script>Real content", "Real content"},
		{"<head><STYLE>body{margin:0}</STYLE><SCRIPT src=\"a.js\"></SCRIPT></head><body>Real content</body>", "Real content"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeHTML(tt.in), "sanitizeHTML(%q)", tt.in)
	}
}

func TestTruncateSnippet(t *testing.T) {
	assert.Equal(t, "short", truncateSnippet("short", 10))

	got := truncateSnippet("alpha beta gamma", 12)
	assert.Equal(t, "alpha beta…", got)

	// Multibyte text without spaces must still cut on a rune boundary.
	got = truncateSnippet("ääääääääää", 5)
	assert.Equal(t, "äääää…", got)
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, looksLikeHTML([]byte("<!DOCTYPE html><html>challenge")))
	assert.True(t, looksLikeHTML([]byte("  <html lang=\"en\">")))
	assert.False(t, looksLikeHTML([]byte(`{"status":"success"}`)))
}

func TestTTLCacheExpiry(t *testing.T) {
	c := newTTLCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.set("k", []Hit{{ID: "a"}}, time.Minute)
	hits, ok := c.get("k")
	require.True(t, ok)
	assert.Len(t, hits, 1)

	now = now.Add(2 * time.Minute)
	_, ok = c.get("k")
	assert.False(t, ok, "stale entry must not be returned")
}

func TestCacheKeyCoversAllParams(t *testing.T) {
	assert.NotEqual(t, cacheKey("search", "a", "10"), cacheKey("search", "a", "20"))
}

func TestCommunitySearch(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"items":[
			{"id":"42","subject":"OData &amp; CAP","search_snippet":"<b>OData</b> batch","view_href":"https://community.sap.com/t5/x/42"}
		]}}`))
	}))
	defer srv.Close()

	a := NewCommunityAdapter(srv.URL, time.Second, time.Hour)
	hits, err := a.Search(context.Background(), "odata")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "community-42", hits[0].ID)
	assert.Equal(t, "OData & CAP", hits[0].Title)
	assert.Equal(t, "OData batch", hits[0].Snippet)
	assert.Equal(t, "community", hits[0].Source)

	// Second call is served from cache.
	_, err = a.Search(context.Background(), "odata")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCommunityChallengePageSingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte("<!DOCTYPE html><html>verify you are human</html>"))
	}))
	defer srv.Close()

	a := NewCommunityAdapter(srv.URL, time.Second, time.Hour)
	hits, err := a.Search(context.Background(), "anything")
	require.Error(t, err, "a challenge page is a failure, not an empty result")
	assert.Empty(t, hits)
	assert.Equal(t, 1, calls, "adapter must not retry")
}

func TestCommunityTimeoutSurfacesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	a := NewCommunityAdapter(srv.URL, 20*time.Millisecond, time.Hour)
	hits, err := a.Search(context.Background(), "slow")
	require.Error(t, err, "timeouts must reach the caller")
	assert.Empty(t, hits)
}

func TestFeatureMatrixUnavailableSurfacesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a := NewFeatureMatrixAdapter(srv.URL, time.Second, time.Hour)
	_, err := a.Search(context.Background(), "gui")
	assert.Error(t, err)
}

func TestFeatureMatrixParseAndFilter(t *testing.T) {
	matrix := "# Matrix\n\n| Feature | On-Premise | Cloud |\n|---|---|---|\n| CL_ABAP_CONV | 7.40 | released |\n| CL_GUI_FRONTEND | 7.00 | not released |\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(matrix))
	}))
	defer srv.Close()

	a := NewFeatureMatrixAdapter(srv.URL, time.Second, time.Hour)
	hits, err := a.Search(context.Background(), "gui")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "CL_GUI_FRONTEND", hits[0].Title)
	assert.Contains(t, hits[0].Snippet, "not released")

	title, content, _, err := a.GetByID(context.Background(), hits[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "CL_GUI_FRONTEND", title)
	assert.Contains(t, content, "7.00")
}

func TestRegistryDispatchByPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"items":[{"id":"7","subject":"Post","body":"full body","view_href":"u"}]}}`))
	}))
	defer srv.Close()

	reg := NewRegistry(NewCommunityAdapter(srv.URL, time.Second, time.Hour))
	title, content, _, err := reg.FetchByID(context.Background(), "community-7")
	require.NoError(t, err)
	assert.Equal(t, "Post", title)
	assert.Equal(t, "full body", content)

	_, _, _, err = reg.FetchByID(context.Background(), "dj-9")
	assert.Error(t, err)
}
