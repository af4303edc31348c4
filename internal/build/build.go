// Package build holds version metadata set through -ldflags.
package build

import "time"

var (
	commit  = ""
	date    = ""
	version = "dev"
	repoURL = "https://github.com/1broseidon/tagtile"
)

func init() {
	date, _ := time.Parse(time.RFC3339, date)

	Current = Build{
		Commit:  commit,
		Version: version,
		Date:    date,
		RepoURL: repoURL,
	}
	if commit != "" {
		Current.CommitURL = repoURL + "/tree/" + commit
	}
}

// Current describes the running binary.
var Current Build

type Build struct {
	Commit    string    `json:"commit,omitempty"`
	Version   string    `json:"version,omitempty"`
	Date      time.Time `json:"date,omitempty"`
	RepoURL   string    `json:"repo_url,omitempty"`
	CommitURL string    `json:"commit_url,omitempty"`
}

// String renders a one-line version banner.
func (b Build) String() string {
	s := "tagtile " + b.Version
	if b.Commit != "" {
		s += " (" + b.Commit + ")"
	}
	if !b.Date.IsZero() {
		s += " built " + b.Date.Format(time.DateOnly)
	}
	return s
}
