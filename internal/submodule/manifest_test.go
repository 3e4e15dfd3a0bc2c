package submodule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `[submodule "libfoo"]
	path = vendor/libfoo
	url = https://github.com/org/libfoo.git
[submodule "tools"]
	path = tools
	url = git@github.com:other-org/build-tools.git
	branch = stable
[submodule "docs"]
	path = a/docs
	url = ../docs
`

func TestParseManifest(t *testing.T) {
	sms, err := ParseManifest([]byte(testManifest))
	require.NoError(t, err)
	require.Len(t, sms, 3)

	assert.Equal(t, "docs", sms[0].Name)
	assert.Equal(t, "a/docs", sms[0].Path)
	assert.Equal(t, "docs", sms[0].RepoName)
	assert.Empty(t, sms[0].RepoOwner)

	assert.Equal(t, "tools", sms[1].Name)
	assert.Equal(t, "stable", sms[1].Branch)
	assert.Equal(t, "other-org", sms[1].RepoOwner)
	assert.Equal(t, "build-tools", sms[1].RepoName)

	assert.Equal(t, "libfoo", sms[2].Name)
	assert.Equal(t, "vendor/libfoo", sms[2].Path)
	assert.Equal(t, "https://github.com/org/libfoo.git", sms[2].URL)
	assert.Equal(t, "org", sms[2].RepoOwner)
	assert.Equal(t, "libfoo", sms[2].RepoName)
	assert.Empty(t, sms[2].Branch)
}

func TestParseManifestWithoutPathFails(t *testing.T) {
	_, err := ParseManifest([]byte("[submodule \"x\"]\n\turl = https://github.com/org/x.git\n"))
	assert.Error(t, err)
}

func TestParseManifestEmpty(t *testing.T) {
	sms, err := ParseManifest(nil)
	require.NoError(t, err)
	assert.Empty(t, sms)
}

func TestRepoNameFromURL(t *testing.T) {
	testcases := []struct {
		url      string
		expected string
	}{
		{"https://github.com/org/libfoo.git", "libfoo"},
		{"https://github.com/org/libfoo", "libfoo"},
		{"https://github.com/org/libfoo/", "libfoo"},
		{"git@github.com:org/libfoo.git", "libfoo"},
		{"ssh://git@github.com/org/libfoo.git", "libfoo"},
		{"../libfoo.git", "libfoo"},
		{"./libfoo", "libfoo"},
		{"/srv/git/libfoo.git", "libfoo"},
		{"libfoo", "libfoo"},
	}

	for _, tc := range testcases {
		t.Run(tc.url, func(t *testing.T) {
			assert.Equal(t, tc.expected, RepoNameFromURL(tc.url))
		})
	}
}

func TestRepoFromURLOwner(t *testing.T) {
	owner, name := RepoFromURL("git@github.com:org/libfoo.git")
	assert.Equal(t, "org", owner)
	assert.Equal(t, "libfoo", name)

	owner, _ = RepoFromURL("../libfoo.git")
	assert.Empty(t, owner)

	owner, _ = RepoFromURL("/srv/git/libfoo.git")
	assert.Empty(t, owner)
}

func TestChangedSubmodules(t *testing.T) {
	sms := []*Submodule{
		{Path: "vendor/libfoo"},
		{Path: "vendor/libfoobar"},
		{Path: "tools"},
	}

	changed := ChangedSubmodules(sms, []string{"vendor/libfoo", "README.md", "tools/x/y.go"})
	require.Len(t, changed, 2)
	assert.Equal(t, "vendor/libfoo", changed[0].Path)
	assert.Equal(t, "tools", changed[1].Path)
}

func TestContainsPath(t *testing.T) {
	assert.True(t, ContainsPath("vendor/libfoo", "vendor/libfoo"))
	assert.True(t, ContainsPath("vendor/libfoo/", "vendor/libfoo/a.go"))
	assert.False(t, ContainsPath("vendor/libfoo", "vendor/libfoobar"))
	assert.False(t, ContainsPath("vendor/libfoo", "vendor"))
}

func TestBaseBranch(t *testing.T) {
	assert.Equal(t, "master", BaseBranch("master", "main", true))
	assert.Equal(t, "release-1", BaseBranch("master", "release-1", false))
}
