package update

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	semver "github.com/blang/semver/v4"
)

const (
	// LatestReleaseURL is the GitHub releases endpoint queried by default.
	LatestReleaseURL = "https://api.github.com/repos/enginesniff/enginesniff/releases/latest"
	cacheFileName    = "update.json"
)

type cache struct {
	LastChecked time.Time `json:"last_checked"`
	Latest      string    `json:"latest"`
}

// Checker looks up the latest release, remembering the answer for MaxAge.
type Checker struct {
	URL      string
	Client   *http.Client
	CacheDir string
	MaxAge   time.Duration
}

// NewChecker returns a Checker for the public release feed, caching under
// the user's config directory.
func NewChecker() Checker {
	return Checker{
		URL:      LatestReleaseURL,
		Client:   &http.Client{Timeout: 2 * time.Second},
		CacheDir: configDir(),
		MaxAge:   24 * time.Hour,
	}
}

func configDir() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, "enginesniff")
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "enginesniff")
}

func (c Checker) loadCache() (cache, error) {
	var ca cache
	if c.CacheDir == "" {
		return ca, errors.New("no config dir")
	}
	b, err := os.ReadFile(filepath.Join(c.CacheDir, cacheFileName))
	if err != nil {
		return ca, err
	}
	_ = json.Unmarshal(b, &ca)
	return ca, nil
}

func (c Checker) saveCache(ca cache) {
	if c.CacheDir == "" {
		return
	}
	_ = os.MkdirAll(c.CacheDir, 0755)
	b, _ := json.MarshalIndent(ca, "", "  ")
	_ = os.WriteFile(filepath.Join(c.CacheDir, cacheFileName), b, 0644)
}

func (c Checker) latestOnline(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "enginesniff-updater")
	req.Header.Set("Accept", "application/vnd.github+json")
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release lookup: %s", resp.Status)
	}
	var obj struct {
		TagName string `json:"tag_name"`
		Name    string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return "", err
	}
	v := obj.TagName
	if v == "" {
		v = obj.Name
	}
	return normalize(v), nil
}

// Check returns (latest, isNewer, error). It is a no-op in CI. A stale or
// missing cache triggers a lookup; lookup failures are returned only when no
// cached answer exists.
func (c Checker) Check(ctx context.Context, current string) (string, bool, error) {
	if os.Getenv("CI") != "" {
		return "", false, nil
	}
	ca, _ := c.loadCache()
	latest := ca.Latest
	if time.Since(ca.LastChecked) > c.MaxAge || latest == "" {
		v, err := c.latestOnline(ctx)
		switch {
		case err == nil:
			latest = v
			c.saveCache(cache{LastChecked: time.Now(), Latest: latest})
		case latest == "":
			return "", false, err
		}
	}
	return latest, Newer(latest, current), nil
}

// Newer reports whether latest is a higher semantic version than current.
// Unparseable versions never compare as newer.
func Newer(latest, current string) bool {
	lv, err := semver.ParseTolerant(normalize(latest))
	if err != nil {
		return false
	}
	cv, err := semver.ParseTolerant(normalize(current))
	if err != nil {
		return false
	}
	return lv.GT(cv)
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	return strings.TrimPrefix(v, "v")
}
