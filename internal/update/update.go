package update

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	semver "github.com/blang/semver/v4"
)

const (
	releasesURL = "https://api.github.com/repos/scanguard/scanguard/releases/latest"
	checkEvery  = 24 * time.Hour
)

// checkState is persisted between runs so at most one release lookup
// happens per day.
type checkState struct {
	LastChecked time.Time `json:"last_checked"`
	Latest      string    `json:"latest"`
}

func statePath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home == "" {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "scanguard", "update.json")
}

func readState() checkState {
	var st checkState
	p := statePath()
	if p == "" {
		return st
	}
	if b, err := os.ReadFile(p); err == nil {
		_ = json.Unmarshal(b, &st)
	}
	return st
}

func writeState(st checkState) {
	p := statePath()
	if p == "" {
		return
	}
	_ = os.MkdirAll(filepath.Dir(p), 0755)
	if b, err := json.MarshalIndent(st, "", "  "); err == nil {
		_ = os.WriteFile(p, b, 0644)
	}
}

func fetchLatest() (string, error) {
	client := &http.Client{Timeout: 2 * time.Second}
	req, err := http.NewRequest(http.MethodGet, releasesURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "scanguard-updater")
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var release struct {
		TagName string `json:"tag_name"`
		Name    string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	if release.TagName != "" {
		return release.TagName, nil
	}
	return release.Name, nil
}

// IsNewer reports whether candidate is a strictly later release than
// current. Unparseable versions never report newer.
func IsNewer(candidate, current string) bool {
	cv, err := semver.ParseTolerant(candidate)
	if err != nil {
		return false
	}
	rv, err := semver.ParseTolerant(current)
	if err != nil {
		return false
	}
	return cv.GT(rv)
}

// Check returns the latest published version and whether it is newer than
// current. Lookups are cached for 24h; CI runs and noNetwork skip entirely.
// A failed lookup is not an error, just no news.
func Check(current string, noNetwork bool) (string, bool, error) {
	if os.Getenv("CI") != "" || noNetwork {
		return "", false, nil
	}
	st := readState()
	if st.Latest == "" || time.Since(st.LastChecked) > checkEvery {
		tag, err := fetchLatest()
		if err != nil {
			return st.Latest, false, nil
		}
		if v, err := semver.ParseTolerant(tag); err == nil {
			st.Latest = v.String()
		}
		st.LastChecked = time.Now()
		writeState(st)
	}
	if st.Latest == "" {
		return "", false, nil
	}
	return st.Latest, IsNewer(st.Latest, current), nil
}
