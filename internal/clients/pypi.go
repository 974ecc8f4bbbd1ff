package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/reqlint/reqlint/internal/cache"
	"github.com/reqlint/reqlint/internal/logger"
	"github.com/reqlint/reqlint/internal/pep440"
)

// PyPIClient handles requests to a PyPI-compatible JSON API
type PyPIClient struct {
	httpClient *http.Client
	cache      *cache.Cache
	baseURL    string
}

// NewPyPIClient creates a new client. The cache may be nil to disable
// caching; baseURL defaults to the public index when empty.
func NewPyPIClient(c *cache.Cache, baseURL string, timeout time.Duration) *PyPIClient {
	if baseURL == "" {
		baseURL = "https://pypi.org"
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &PyPIClient{
		httpClient: &http.Client{Timeout: timeout},
		cache:      c,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// projectResponse is the subset of the JSON API response we consume
type projectResponse struct {
	Info struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"info"`
	Releases map[string][]struct {
		Yanked bool `json:"yanked"`
	} `json:"releases"`
}

// Project holds the registry's view of a package
type Project struct {
	Name     string
	Latest   *pep440.Version
	Versions []*pep440.Version // ascending, yanked releases excluded
}

// Project fetches package metadata, serving from cache when fresh
func (c *PyPIClient) Project(ctx context.Context, name string) (*Project, error) {
	url := fmt.Sprintf("%s/pypi/%s/json", c.baseURL, name)

	var data []byte
	if c.cache != nil {
		if cached, ok := c.cache.Get(url); ok {
			data = cached
		}
	}

	if data == nil {
		var err error
		data, err = c.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			c.cache.Set(url, data)
		}
	}

	return c.parseProject(ctx, name, data)
}

// LatestVersion returns the newest release the registry reports
func (c *PyPIClient) LatestVersion(ctx context.Context, name string) (*pep440.Version, error) {
	proj, err := c.Project(ctx, name)
	if err != nil {
		return nil, err
	}
	if proj.Latest == nil {
		return nil, fmt.Errorf("no releases for %s", name)
	}
	return proj.Latest, nil
}

func (c *PyPIClient) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("package not found at %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

func (c *PyPIClient) parseProject(ctx context.Context, name string, data []byte) (*Project, error) {
	var pr projectResponse
	if err := json.Unmarshal(data, &pr); err != nil {
		return nil, fmt.Errorf("failed to parse registry response for %s: %w", name, err)
	}

	log := logger.FromContext(ctx)
	proj := &Project{Name: pr.Info.Name}

	for ver, files := range pr.Releases {
		if allYanked(files) {
			continue
		}
		v, err := pep440.NewVersion(ver)
		if err != nil {
			log.Debug("ignoring unparseable release",
				zap.String("package", name), zap.String("version", ver))
			continue
		}
		proj.Versions = append(proj.Versions, v)
	}
	pep440.Sort(proj.Versions)

	if pr.Info.Version != "" {
		if v, err := pep440.NewVersion(pr.Info.Version); err == nil {
			proj.Latest = v
		}
	}
	if proj.Latest == nil && len(proj.Versions) > 0 {
		proj.Latest = proj.Versions[len(proj.Versions)-1]
	}

	return proj, nil
}

func allYanked(files []struct {
	Yanked bool `json:"yanked"`
}) bool {
	if len(files) == 0 {
		return false
	}
	for _, f := range files {
		if !f.Yanked {
			return false
		}
	}
	return true
}
