package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Release describes one published loader release.
type Release struct {
	Tag   string `json:"tag_name"`
	Name  string `json:"name"`
	URL   string `json:"html_url"`
	Draft bool   `json:"draft"`
	Pre   bool   `json:"prerelease"`
}

// Version returns the release tag without its leading "v".
func (r Release) Version() string {
	return strings.TrimPrefix(r.Tag, "v")
}

// Updater checks the loader's release feed for versions newer than the one
// installed.
type Updater struct {
	log    *zap.Logger
	client *resty.Client
	repo   string // "owner/name"
}

// NewUpdater creates an updater for the given GitHub repository.
func NewUpdater(log *zap.Logger, repo string) *Updater {
	client := resty.New().
		SetBaseURL("https://api.github.com").
		SetHeader("Accept", "application/vnd.github+json")
	return &Updater{log: log, client: client, repo: repo}
}

// SetBaseURL points the updater at a different API host.
func (u *Updater) SetBaseURL(url string) {
	u.client.SetBaseURL(url)
}

// Check fetches the latest release and reports whether it is newer than
// current. An empty current version (loader not installed) always reports
// an update.
func (u *Updater) Check(ctx context.Context, current string) (Release, bool, error) {
	var release Release
	resp, err := u.client.R().
		SetContext(ctx).
		SetResult(&release).
		Get(fmt.Sprintf("/repos/%s/releases/latest", u.repo))
	if err != nil {
		return Release{}, false, fmt.Errorf("fetching latest release: %w", err)
	}
	if resp.IsError() {
		return Release{}, false, fmt.Errorf("fetching latest release: %s", resp.Status())
	}

	newer := current == "" || versionLess(current, release.Version())
	u.log.Debug("release check",
		zap.String("current", current),
		zap.String("latest", release.Version()),
		zap.Bool("update", newer),
	)
	return release, newer, nil
}

// versionLess compares dotted numeric versions segment by segment. Segments
// that fail to parse compare lexically, which is good enough for the
// loader's tag scheme.
func versionLess(a, b string) bool {
	as := strings.Split(strings.TrimPrefix(a, "v"), ".")
	bs := strings.Split(strings.TrimPrefix(b, "v"), ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			if an != bn {
				return an < bn
			}
			continue
		}
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return len(as) < len(bs)
}
