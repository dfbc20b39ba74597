package updater

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/renameio/v2"
)

// Match is one rewritten occurrence of the pattern.
type Match struct {
	Line        int
	Text        string
	Replacement string
}

// Substitute rewrites every non-overlapping match of re in content in a
// single pass, expanding tmpl against each match. The output is the same as
// re.ReplaceAllString(content, tmpl).
func Substitute(content string, re *regexp.Regexp, tmpl string) (string, []Match) {
	idx := re.FindAllStringSubmatchIndex(content, -1)
	if len(idx) == 0 {
		return content, nil
	}

	var b strings.Builder
	b.Grow(len(content))
	matches := make([]Match, 0, len(idx))
	last := 0
	for _, m := range idx {
		repl := string(re.ExpandString(nil, tmpl, content, m))
		b.WriteString(content[last:m[0]])
		b.WriteString(repl)
		matches = append(matches, Match{
			Line:        strings.Count(content[:m[0]], "\n") + 1,
			Text:        content[m[0]:m[1]],
			Replacement: repl,
		})
		last = m[1]
	}
	b.WriteString(content[last:])
	return b.String(), matches
}

// RegexReplace applies pattern to the file at path and atomically writes the
// result back when it differs. Nothing is written on a read error or when
// the content is unchanged.
func RegexReplace(path, pattern, tmpl string, opts Options) (*Result, error) {
	a := opts.action()

	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	// write through symlinks instead of replacing them
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	contentByte, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	a.Debugf("read %d bytes from %s", len(contentByte), target)

	content := string(contentByte)
	result, matches := Substitute(content, regex, tmpl)
	res := &Result{
		Path:    path,
		Matches: matches,
		Changed: result != content,
	}
	for _, m := range matches {
		a.Debugf("match at %s:%d (%d bytes -> %d bytes)", path, m.Line, len(m.Text), len(m.Replacement))
	}

	if !res.Changed {
		return res, nil
	}
	if opts.DryRun {
		a.Infof("dry run: %s would shrink by %d bytes, not writing", path, len(content)-len(result))
		return res, nil
	}

	perm := info.Mode().Perm()
	if opts.Backup {
		backup := target + BackupSuffix
		err = renameio.WriteFile(backup, contentByte, perm)
		if err != nil {
			return res, fmt.Errorf("error writing backup: %w", err)
		}
		res.Backup = backup
		a.Infof("backup written to %s", backup)
	}

	err = renameio.WriteFile(target, []byte(result), perm)
	if err != nil {
		return res, fmt.Errorf("error writing to file: %w", err)
	}
	res.Written = true

	return res, nil
}
