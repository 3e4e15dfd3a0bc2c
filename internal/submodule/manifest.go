package submodule

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/config"
)

// ManifestPath is the path of the file declaring the submodules of a
// repository.
const ManifestPath = ".gitmodules"

// Submodule describes a submodule of a repository.
// The fields after RepoName are set during resolution.
type Submodule struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
	// Branch is the branch configured in the manifest, it is optional.
	Branch    string `json:"branch,omitempty"`
	RepoOwner string `json:"repo_owner,omitempty"`
	RepoName  string `json:"repo_name"`

	DefaultBranch string `json:"default_branch,omitempty"`
	BaseBranch    string `json:"base_branch,omitempty"`
	SHA           string `json:"sha,omitempty"`
	PRBranch      string `json:"pr_branch,omitempty"`
	// PRNumber is PRNumberOnBaseBranch if SHA is part of the base branch,
	// PRNumberNone if SHA is the head of a branch without pull request and
	// PRNumberUnresolved if resolving the submodule failed.
	PRNumber int `json:"pr_number"`
	// Error is set when resolving the submodule failed.
	Error string `json:"error,omitempty"`
}

const (
	PRNumberOnBaseBranch = 0
	PRNumberNone         = -1
	PRNumberUnresolved   = -2
)

// ParseManifest parses the content of a .gitmodules file.
// The returned submodules are sorted by path.
func ParseManifest(data []byte) ([]*Submodule, error) {
	modules := config.NewModules()
	if err := modules.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("parsing %s failed: %w", ManifestPath, err)
	}

	result := make([]*Submodule, 0, len(modules.Submodules))

	for name, m := range modules.Submodules {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("submodule %q: %w", name, err)
		}

		owner, repo := RepoFromURL(m.URL)

		result = append(result, &Submodule{
			Name:      name,
			Path:      path.Clean(m.Path),
			URL:       m.URL,
			Branch:    m.Branch,
			RepoOwner: owner,
			RepoName:  repo,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})

	return result, nil
}

// ChangedSubmodules returns the submodules whose path is in changedFiles or
// is a parent directory of an element in changedFiles.
func ChangedSubmodules(submodules []*Submodule, changedFiles []string) []*Submodule {
	var result []*Submodule

	for _, sm := range submodules {
		for _, f := range changedFiles {
			if ContainsPath(sm.Path, f) {
				result = append(result, sm)
				break
			}
		}
	}

	return result
}

// ContainsPath returns true if p is equal to dir or is located below dir.
func ContainsPath(dir, p string) bool {
	dir = strings.TrimSuffix(dir, "/")
	return p == dir || strings.HasPrefix(p, dir+"/")
}

// RepoNameFromURL returns the name of the repository referenced by url.
func RepoNameFromURL(url string) string {
	_, name := RepoFromURL(url)
	return name
}

// RepoFromURL returns the owner and name of the repository referenced by a
// submodule url.
// Supported are https URLs (https://github.com/org/name.git), scp-like ssh
// URLs (git@github.com:org/name.git) and relative URLs (../name.git).
// For relative URLs and unrecognized formats the owner is empty and the name
// is the last path segment.
func RepoFromURL(url string) (owner, name string) {
	u := strings.TrimSpace(url)
	u = strings.TrimSuffix(u, "/")
	u = strings.TrimSuffix(u, ".git")

	switch {
	case strings.Contains(u, "://"):
		u = u[strings.Index(u, "://")+3:]
		// strip the host
		if idx := strings.Index(u, "/"); idx != -1 {
			u = u[idx+1:]
		} else {
			u = ""
		}

	case strings.Contains(u, "@") && strings.Contains(u, ":"):
		u = u[strings.Index(u, ":")+1:]

	default:
		return "", path.Base(u)
	}

	elems := strings.Split(strings.Trim(u, "/"), "/")
	if len(elems) >= 2 {
		return elems[len(elems)-2], elems[len(elems)-1]
	}

	return "", elems[len(elems)-1]
}
