package cli

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blang/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releasesJSON = `[
  {"tag_name": "v1.3.0-rc1", "prerelease": true},
  {"tag_name": "nightly", "name": "colorfill 1.1.0",
   "assets": [{"name": "checksums.txt", "browser_download_url": "https://example.com/sums"},
              {"name": "colorfill_linux_amd64.tar.gz", "browser_download_url": "https://example.com/linux"}]},
  {"tag_name": "v1.2.0", "assets": [{"name": "notes.txt", "browser_download_url": "https://example.com/notes"}]},
  {"tag_name": "v9.9.9", "draft": true},
  {"tag_name": "latest"}
]`

func TestLatestReleaseFromAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/"+updateRepo+"/releases", r.URL.Path)
		w.Write([]byte(releasesJSON))
	}))
	defer srv.Close()
	old := githubAPI
	githubAPI = srv.URL
	defer func() { githubAPI = old }()

	releases, err := fetchReleases(srv.Client(), updateRepo)
	require.NoError(t, err)
	require.Len(t, releases, 5)

	latest, ok := latestRelease(releases)
	require.True(t, ok)
	assert.Equal(t, semver.MustParse("1.2.0"), latest.Version)
	assert.Equal(t, "https://example.com/notes", latest.AssetURL)

	v, ok := releaseVersion(releases[1])
	require.True(t, ok)
	assert.Equal(t, "1.1.0", v.String())
	assert.Equal(t, "https://example.com/linux", releaseAsset(releases[1]))
}

func TestFetchReleasesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()
	old := githubAPI
	githubAPI = srv.URL
	defer func() { githubAPI = old }()

	_, err := fetchReleases(srv.Client(), updateRepo)
	assert.ErrorContains(t, err, "403")

	_, ok := latestRelease(nil)
	assert.False(t, ok)
}
