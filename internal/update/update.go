// Package update checks whether a newer leadfinder release exists.
package update

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const ReleasesURL = "https://api.github.com/repos/matheuskafuri/leadfinder/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
	URL           string
}

type ghRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Check asks the releases endpoint for the latest tag. It returns nil when
// the current version is up to date or the check fails for any reason.
func Check(ctx context.Context, client *http.Client, endpoint, currentVersion string) *Result {
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var release ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	current := strings.TrimPrefix(currentVersion, "v")
	if latest == "" || latest == current || current == "dev" {
		return nil
	}

	return &Result{LatestVersion: latest, URL: release.HTMLURL}
}
