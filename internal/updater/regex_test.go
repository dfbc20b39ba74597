package updater

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	actions "github.com/sethvargo/go-githubactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"button-prune/internal/config"
)

// copyFixture copies testdata/name into a temp dir and returns its path.
func copyFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "App.tsx")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func quietOptions() (Options, *bytes.Buffer) {
	var buf bytes.Buffer
	return Options{Action: actions.New(actions.WithWriter(&buf))}, &buf
}

func TestSubstitute_SpecExample(t *testing.T) {
	in := "</button>\n\n" +
		`<button className="rounded border border-white/30 px-3 py-2">Evidence</button>` + "\n\n" +
		`<button aria-label="Open settings" onClick={open}>`
	want := "</button>\n\n" + `<button aria-label="Open settings" onClick={open}>`

	out, matches := Substitute(in, regexp.MustCompile(config.DefaultPattern), config.DefaultTmpl)
	assert.Equal(t, want, out)
	require.Len(t, matches, 1)
	assert.Equal(t, 1, matches[0].Line)
}

func TestSubstitute_MatchesReplaceAll(t *testing.T) {
	re := regexp.MustCompile(`(a)(b+)(c)`)
	in := "xabcyabbbcz"
	out, matches := Substitute(in, re, "${1}${3}")
	assert.Equal(t, re.ReplaceAllString(in, "${1}${3}"), out)
	assert.Equal(t, "xacyacz", out)
	require.Len(t, matches, 2)
	assert.Equal(t, "abbbc", matches[1].Text)
	assert.Equal(t, "ac", matches[1].Replacement)
}

func TestSubstitute_LineNumbers(t *testing.T) {
	before := readFixture(t, "App.before.tsx")
	_, matches := Substitute(before, regexp.MustCompile(config.DefaultPattern), config.DefaultTmpl)
	require.Len(t, matches, 1)
	// the pause button closes on line 11
	assert.Equal(t, 11, matches[0].Line)
}

func TestRegexReplace_RemovesEvidenceButton(t *testing.T) {
	path := copyFixture(t, "App.before.tsx")
	opts, _ := quietOptions()

	res, err := RegexReplace(path, config.DefaultPattern, config.DefaultTmpl, opts)
	require.NoError(t, err)
	assert.True(t, res.Matched())
	assert.True(t, res.Changed)
	assert.True(t, res.Written)
	assert.Empty(t, res.Backup)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, readFixture(t, "App.after.tsx"), string(got))
}

func TestRegexReplace_NoMatchLeavesFileAlone(t *testing.T) {
	path := copyFixture(t, "NoMatch.tsx")
	old := time.Unix(1_000_000_000, 0)
	require.NoError(t, os.Chtimes(path, old, old))
	opts, _ := quietOptions()

	res, err := RegexReplace(path, config.DefaultPattern, config.DefaultTmpl, opts)
	require.NoError(t, err)
	assert.False(t, res.Matched())
	assert.False(t, res.Changed)
	assert.False(t, res.Written)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, readFixture(t, "NoMatch.tsx"), string(got))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "file was rewritten")
}

func TestRegexReplace_Idempotent(t *testing.T) {
	path := copyFixture(t, "App.before.tsx")
	opts, _ := quietOptions()

	_, err := RegexReplace(path, config.DefaultPattern, config.DefaultTmpl, opts)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	res, err := RegexReplace(path, config.DefaultPattern, config.DefaultTmpl, opts)
	require.NoError(t, err)
	assert.False(t, res.Matched())
	assert.False(t, res.Written)

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRegexReplace_MissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "App.tsx")
	opts, _ := quietOptions()
	opts.Backup = true

	res, err := RegexReplace(path, config.DefaultPattern, config.DefaultTmpl, opts)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRegexReplace_InvalidPattern(t *testing.T) {
	path := copyFixture(t, "App.before.tsx")
	opts, _ := quietOptions()

	_, err := RegexReplace(path, `(unclosed`, "", opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestRegexReplace_DryRun(t *testing.T) {
	path := copyFixture(t, "App.before.tsx")
	opts, buf := quietOptions()
	opts.DryRun = true
	opts.Backup = true

	res, err := RegexReplace(path, config.DefaultPattern, config.DefaultTmpl, opts)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.False(t, res.Written)
	assert.Empty(t, res.Backup)
	assert.Contains(t, buf.String(), "dry run")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, readFixture(t, "App.before.tsx"), string(got))
	assert.NoFileExists(t, path+BackupSuffix)
}

func TestRegexReplace_Backup(t *testing.T) {
	path := copyFixture(t, "App.before.tsx")
	opts, _ := quietOptions()
	opts.Backup = true

	res, err := RegexReplace(path, config.DefaultPattern, config.DefaultTmpl, opts)
	require.NoError(t, err)
	assert.Equal(t, path+BackupSuffix, res.Backup)

	bak, err := os.ReadFile(path + BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, readFixture(t, "App.before.tsx"), string(bak))
}

func TestRegexReplace_KeepsPermissions(t *testing.T) {
	path := copyFixture(t, "App.before.tsx")
	require.NoError(t, os.Chmod(path, 0o600))
	opts, _ := quietOptions()

	_, err := RegexReplace(path, config.DefaultPattern, config.DefaultTmpl, opts)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRegexReplace_FollowsSymlink(t *testing.T) {
	path := copyFixture(t, "App.before.tsx")
	link := filepath.Join(t.TempDir(), "link.tsx")
	require.NoError(t, os.Symlink(path, link))
	opts, _ := quietOptions()

	_, err := RegexReplace(link, config.DefaultPattern, config.DefaultTmpl, opts)
	require.NoError(t, err)

	fi, err := os.Lstat(link)
	require.NoError(t, err)
	assert.True(t, fi.Mode()&os.ModeSymlink != 0)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, readFixture(t, "App.after.tsx"), string(got))
}
