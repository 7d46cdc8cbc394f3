package update

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func releaseServer(t *testing.T, tag string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.Header.Get("User-Agent") != "enginesniff-updater" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"tag_name": tag})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheck_CI(t *testing.T) {
	t.Setenv("CI", "1")
	if latest, newer, err := (Checker{URL: "http://127.0.0.1:0"}).Check(context.Background(), "1.0.0"); err != nil || latest != "" || newer {
		t.Fatalf("expected no-op in CI; got latest=%q newer=%v err=%v", latest, newer, err)
	}
}

func TestCheck_FetchesAndCaches(t *testing.T) {
	t.Setenv("CI", "")
	var hits int32
	srv := releaseServer(t, "v1.4.0", &hits)
	c := Checker{URL: srv.URL, Client: srv.Client(), CacheDir: t.TempDir(), MaxAge: time.Hour}

	latest, newer, err := c.Check(context.Background(), "0.1.0")
	if err != nil {
		t.Fatal(err)
	}
	if latest != "1.4.0" || !newer {
		t.Fatalf("expected 1.4.0 newer; got %q %v", latest, newer)
	}
	if _, err := os.Stat(filepath.Join(c.CacheDir, cacheFileName)); err != nil {
		t.Fatalf("cache not written: %v", err)
	}
	if _, _, err := c.Check(context.Background(), "1.4.0"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected fresh cache to avoid a second lookup, got %d hits", n)
	}
}

func TestCheck_StaleCacheSurvivesOutage(t *testing.T) {
	t.Setenv("CI", "")
	dir := t.TempDir()
	b, _ := json.Marshal(cache{LastChecked: time.Now().Add(-48 * time.Hour), Latest: "1.2.3"})
	if err := os.WriteFile(filepath.Join(dir, cacheFileName), b, 0644); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := Checker{URL: srv.URL, Client: srv.Client(), CacheDir: dir, MaxAge: 24 * time.Hour}
	latest, newer, err := c.Check(context.Background(), "1.2.2")
	if err != nil {
		t.Fatal(err)
	}
	if latest != "1.2.3" || !newer {
		t.Fatalf("expected cached latest=1.2.3 newer; got %q %v", latest, newer)
	}
}

func TestCheck_OutageWithoutCache(t *testing.T) {
	t.Setenv("CI", "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	c := Checker{URL: srv.URL, Client: srv.Client(), CacheDir: t.TempDir()}
	if _, _, err := c.Check(context.Background(), "1.0.0"); err == nil {
		t.Fatal("expected lookup error")
	}
}

func TestNewer(t *testing.T) {
	cases := []struct {
		latest, current string
		want            bool
	}{
		{"1.3.0", "1.2.9", true},
		{"v1.2.3", " 1.2.3 ", false},
		{"1.2.0", "1.2.1", false},
		{"1.10.0", "1.9.0", true},
		{"2.0.0", "2.0.0-rc.1", true},
		{"garbage", "1.0.0", false},
		{"", "1.0.0", false},
	}
	for _, tc := range cases {
		if got := Newer(tc.latest, tc.current); got != tc.want {
			t.Fatalf("Newer(%q, %q) = %v, want %v", tc.latest, tc.current, got, tc.want)
		}
	}
}
