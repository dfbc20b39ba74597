package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	actions "github.com/sethvargo/go-githubactions"

	"button-prune/internal/config"
	"button-prune/internal/git"
	"button-prune/internal/updater"
	"button-prune/internal/version"
)

func main() {
	if err := run(os.Args[1:], actions.New()); err != nil {
		actions.Fatalf("%s", err.Error())
	}
}

func run(args []string, a *actions.Action) error {
	app := kingpin.New("button-prune", "Removes the duplicated Evidence button from the control cluster.")
	configPath := app.Flag("config", "Path to a button-prune config file").Envar("BUTTON_PRUNE_CONFIG").String()
	path := app.Flag("path", fmt.Sprintf("File to rewrite (default %s)", config.DefaultPath)).Envar("BUTTON_PRUNE_PATH").String()
	dryRun := app.Flag("dry-run", "Report what would change without writing").Envar("BUTTON_PRUNE_DRY_RUN").Bool()
	backup := app.Flag("backup", "Keep a copy of the original file with a .bak suffix").Envar("BUTTON_PRUNE_BACKUP").Bool()
	strict := app.Flag("strict", "Fail when the pattern does not match").Envar("BUTTON_PRUNE_STRICT").Bool()
	requireClean := app.Flag("require-clean", "Refuse to rewrite a file with uncommitted changes").Envar("BUTTON_PRUNE_REQUIRE_CLEAN").Bool()
	commit := app.Flag("commit", "Commit the rewritten file to the enclosing git repository").Envar("BUTTON_PRUNE_COMMIT").Bool()
	gitCommitAuthorName := app.Flag("git-commit-author-name", "Author name for git commit").Envar("GIT_COMMIT_AUTHOR_NAME").String()
	gitCommitAuthorEmail := app.Flag("git-commit-author-email", "Author email for git commit").Envar("GIT_COMMIT_AUTHOR_EMAIL").String()
	ver := app.Flag("version", "Print version").Short('v').Bool()
	if _, err := app.Parse(args); err != nil {
		return err
	}

	if *ver {
		a.Infof("%s", version.VersionInfo())
		a.Infof("%s", version.BuildContext())
		return nil
	}

	a.Debugf("starting button-prune ...")
	a.Group("🔷 Version Info")
	a.Debugf("%s", version.VersionInfo())
	a.Debugf("%s", version.BuildContext())
	a.EndGroup()

	a.Group("✅ Initializing")
	a.Debugf("loading config: %q", *configPath)
	c, err := config.GetConfig(*configPath, config.Overrides{
		Path:         *path,
		Commit:       *commit,
		RequireClean: *requireClean,
		AuthorName:   *gitCommitAuthorName,
		AuthorEmail:  *gitCommitAuthorEmail,
	})
	if err != nil {
		return fmt.Errorf("error getting config: %w", err)
	}
	target := c.Spec.TargetFile

	var repo *git.Repo
	if c.Spec.Git.RequireClean || c.Spec.Git.Commit {
		a.Debugf("initializing git client ...")
		client, err := git.NewClient(&git.ClientOpts{
			AuthorName:  c.Spec.Git.AuthorName,
			AuthorEmail: c.Spec.Git.AuthorEmail,
			Action:      a,
		})
		if err != nil {
			return fmt.Errorf("error creating git client: %w", err)
		}
		repo, err = client.Open(target.Path)
		if err != nil {
			return err
		}
		if c.Spec.Git.RequireClean {
			clean, err := repo.IsClean()
			if err != nil {
				return fmt.Errorf("error reading git status: %w", err)
			}
			if !clean {
				return fmt.Errorf("%w: %s", git.ErrDirty, target.Path)
			}
		}
	}
	a.EndGroup()

	a.Group(fmt.Sprintf("🚀 Updating %s", target.Path))
	res, err := updater.UpdateFile(target, updater.Options{
		DryRun: *dryRun,
		Backup: *backup,
		Strict: *strict,
		Action: a,
	})
	a.EndGroup()
	if err != nil {
		return fmt.Errorf("error updating file: %w", err)
	}
	if !res.Written {
		return nil
	}
	a.Infof("%s", c.Spec.Message)

	if c.Spec.Git.Commit {
		hash, committed, err := repo.Commit(c.Spec.Git.CommitMessage)
		if err != nil {
			return fmt.Errorf("error committing %s: %w", target.Path, err)
		}
		if committed {
			a.Infof("committed %s as %s", target.Path, hash.String())
		}
	}
	return nil
}
