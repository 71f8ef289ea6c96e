package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

const updateRepo = "Fepozopo/colorfill"

// githubAPI is the releases API base; tests point it at a local server.
var githubAPI = "https://api.github.com"

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

func fetchReleases(client *http.Client, repo string) ([]githubRelease, error) {
	resp, err := client.Get(fmt.Sprintf("%s/repos/%s/releases", githubAPI, repo))
	if err != nil {
		return nil, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}
	var releases []githubRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("failed to decode github releases: %w", err)
	}
	return releases, nil
}

// releaseVersion finds a semver in the tag or, failing that, the name.
func releaseVersion(r githubRelease) (semver.Version, bool) {
	for _, s := range []string{r.TagName, r.Name} {
		m := semverRe.FindString(s)
		if m == "" {
			continue
		}
		if v, err := semver.Parse(strings.TrimPrefix(m, "v")); err == nil {
			return v, true
		}
	}
	return semver.Version{}, false
}

// releaseAsset prefers an asset whose name looks like a platform binary.
func releaseAsset(r githubRelease) string {
	fallback := ""
	for _, a := range r.Assets {
		n := strings.ToLower(a.Name)
		for _, hint := range []string{"darwin", "linux", "windows", "amd64", "arm64"} {
			if strings.Contains(n, hint) {
				return a.BrowserDownloadURL
			}
		}
		if fallback == "" {
			fallback = a.BrowserDownloadURL
		}
	}
	return fallback
}

// latestRelease picks the highest published, non-prerelease semver release.
func latestRelease(releases []githubRelease) (*selfupdate.Release, bool) {
	type candidate struct {
		ver   semver.Version
		asset string
	}
	var cands []candidate
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		v, ok := releaseVersion(r)
		if !ok {
			continue
		}
		cands = append(cands, candidate{ver: v, asset: releaseAsset(r)})
	}
	if len(cands) == 0 {
		return nil, false
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].ver.GT(cands[j].ver) })
	return &selfupdate.Release{Version: cands[0].ver, AssetURL: cands[0].asset}, true
}

// CheckForUpdates compares Version with the latest GitHub release and,
// after confirmation, replaces and restarts the running binary.
func CheckForUpdates() error {
	fmt.Printf("Current version: %s\n", Version)
	releases, err := fetchReleases(&http.Client{Timeout: 10 * time.Second}, updateRepo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	latest, found := latestRelease(releases)
	if !found {
		fmt.Printf("No releases found for %s.\n", updateRepo)
		return nil
	}
	fmt.Printf("Latest version: %s\n", latest.Version)

	current, perr := semver.Parse(strings.TrimPrefix(Version, "v"))
	if perr != nil {
		fmt.Printf("warning: could not parse current version %q: %v\n", Version, perr)
	} else if latest.Version.LTE(current) {
		fmt.Printf("You are already running the latest version: %s.\n", current)
		return nil
	}
	if latest.AssetURL == "" {
		fmt.Printf("A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		return nil
	}

	answer, err := PromptLine(fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version))
	if err != nil {
		return fmt.Errorf("failed reading input: %w", err)
	}
	if a := strings.ToLower(answer); a != "y" && a != "yes" {
		fmt.Println("Update cancelled.")
		return nil
	}

	fmt.Println("Updating...")
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	// Exec only returns on failure; fall back to starting a child.
	argv := append([]string{exe}, os.Args[1:]...)
	if err := syscall.Exec(exe, argv, os.Environ()); err != nil {
		cmd := exec.Command(exe, os.Args[1:]...)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		if startErr := cmd.Start(); startErr != nil {
			fmt.Printf("Updated to version %s; please restart colorfill (%v)\n", latest.Version, startErr)
			return nil
		}
		os.Exit(0)
	}
	return nil
}
