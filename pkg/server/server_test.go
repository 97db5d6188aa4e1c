package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/figwire/pkg/cache"
)

// countingCache wraps a cache and counts hits and sets.
type countingCache struct {
	inner cache.Cache
	mu    sync.Mutex
	hits  int
	sets  int
}

func (c *countingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.inner.Get(ctx, key)
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
	}
	return data, ok, err
}

func (c *countingCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.inner.Set(ctx, key, data, ttl)
}

func (c *countingCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

func (c *countingCache) Close() error { return c.inner.Close() }

func newTestServer(t *testing.T) (*httptest.Server, *countingCache) {
	t.Helper()
	backing, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cc := &countingCache{inner: backing}
	srv := New(Config{Cache: cc})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, cc
}

func TestConvert(t *testing.T) {
	ts, _ := newTestServer(t)

	body := `{"data": [{"type": "scatter", "y": [1, 2]}]}`
	resp, err := http.Post(ts.URL+"/v1/convert", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	data, ok := out["data"].([]any)
	if !ok || len(data) != 1 {
		t.Errorf("converted data = %v", out["data"])
	}
	if _, ok := out["layout"]; !ok {
		t.Error("converted output missing layout")
	}
}

func TestConvertCaches(t *testing.T) {
	ts, cc := newTestServer(t)

	body := `{"data": [{"type": "bar"}]}`
	for i := 0; i < 2; i++ {
		resp, err := http.Post(ts.URL+"/v1/convert", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.sets != 1 || cc.hits != 1 {
		t.Errorf("cache sets = %d, hits = %d; want one of each", cc.sets, cc.hits)
	}
}

func TestConvertErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, tc := range []struct {
		name   string
		url    string
		body   string
		status int
		code   string
	}{
		{"malformed", "/v1/convert", `{"data":`, http.StatusBadRequest, "PARSE_ERROR"},
		{"bad shape", "/v1/convert", `{"data": "x"}`, http.StatusBadRequest, "INVALID_FIGURE"},
		{"bad engine", "/v1/convert?engine=simplejson", `{"data": []}`, http.StatusBadRequest, "UNSUPPORTED_ENGINE"},
		{"unlinked engine", "/v1/convert?engine=orjson", `{"data": []}`, http.StatusNotImplemented, "MISSING_DEPENDENCY"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+tc.url, "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tc.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.status)
			}
			var payload map[string]string
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				t.Fatal(err)
			}
			if payload["code"] != tc.code {
				t.Errorf("code = %s, want %s", payload["code"], tc.code)
			}
		})
	}
}

func TestFigureLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	client := ts.Client()

	put := func(id, body string) *http.Response {
		req, err := http.NewRequest(http.MethodPut, ts.URL+"/v1/figures/"+id, strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	resp := put("fig-1", `{"data": [{"type": "scatter"}], "layout": {"title": "t"}}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("PUT status = %d", resp.StatusCode)
	}

	resp, err := client.Get(ts.URL + "/v1/figures/fig-1")
	if err != nil {
		t.Fatal(err)
	}
	var fig map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&fig); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d", resp.StatusCode)
	}
	layout, _ := fig["layout"].(map[string]any)
	if layout["title"] != "t" {
		t.Errorf("stored figure layout = %v", fig["layout"])
	}

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/v1/figures/fig-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err = client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", resp.StatusCode)
	}

	resp, err = client.Get(ts.URL + "/v1/figures/fig-1")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET after delete status = %d", resp.StatusCode)
	}
}

func TestGetFigureCachesAndInvalidates(t *testing.T) {
	ts, cc := newTestServer(t)
	client := ts.Client()

	put := func(body string) {
		t.Helper()
		req, err := http.NewRequest(http.MethodPut, ts.URL+"/v1/figures/fig-c", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("PUT status = %d", resp.StatusCode)
		}
	}
	get := func() map[string]any {
		t.Helper()
		resp, err := client.Get(ts.URL + "/v1/figures/fig-c")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET status = %d", resp.StatusCode)
		}
		var fig map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&fig); err != nil {
			t.Fatal(err)
		}
		return fig
	}

	put(`{"data": [], "layout": {"title": "one"}}`)
	get()
	get()

	cc.mu.Lock()
	hits := cc.hits
	cc.mu.Unlock()
	if hits != 1 {
		t.Errorf("figure cache hits = %d, want 1", hits)
	}

	put(`{"data": [], "layout": {"title": "two"}}`)
	fig := get()
	layout, _ := fig["layout"].(map[string]any)
	if layout["title"] != "two" {
		t.Errorf("layout after replace = %v", fig["layout"])
	}
}

func TestPutFigureRejectsInvalid(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/v1/figures/bad", strings.NewReader(`{"data": [{"type": 7}]}`))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("PUT invalid status = %d", resp.StatusCode)
	}
}
