package updater

import (
	"errors"
	"fmt"

	actions "github.com/sethvargo/go-githubactions"

	"button-prune/internal/config"
)

const BackupSuffix = ".bak"

// ErrNoMatch is returned in strict mode when the pattern found nothing.
var ErrNoMatch = errors.New("pattern did not match")

type Options struct {
	DryRun bool
	Backup bool
	Strict bool
	// Action receives log output. Nil logs to stdout.
	Action *actions.Action
}

func (o Options) action() *actions.Action {
	if o.Action == nil {
		return actions.New()
	}
	return o.Action
}

// Result describes what one run did to the target file.
type Result struct {
	Path    string
	Matches []Match
	// Changed is true when the substituted content differs from the file.
	Changed bool
	// Written is true when the file on disk was replaced.
	Written bool
	Backup  string
}

func (r *Result) Matched() bool {
	return r != nil && len(r.Matches) > 0
}

func UpdateFile(tf config.TargetFile, opts Options) (*Result, error) {
	var (
		res *Result
		err error
	)
	switch tf.Replacer {
	case "regex":
		res, err = RegexReplace(tf.Path, tf.Regex.Pattern, tf.Regex.Tmpl, opts)
		if err != nil {
			return res, err
		}
	default:
		return nil, fmt.Errorf("invalid replacer: %s", tf.Replacer)
	}

	if !res.Matched() {
		opts.action().Warningf("%s %s; file left unchanged", ErrNoMatch, tf.Path)
		if opts.Strict {
			return res, fmt.Errorf("%w: %s", ErrNoMatch, tf.Path)
		}
	}
	return res, nil
}
