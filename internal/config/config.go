package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

const (
	APIVersion = "button-prune/v1"
	Kind       = "ButtonPrune"

	DefaultPath    = "src/App.tsx"
	DefaultMessage = "Removed duplicate Evidence button"

	// DefaultPattern matches the closing tag of the pause button, the Evidence
	// button block and the opening of the settings button. Indentation is free
	// so it survives reformatting.
	DefaultPattern = `(?s)([ \t]*</button>[ \t]*\n\s*\n)` +
		`([ \t]*<button\s+className="rounded border border-white/30[^>]*>\s*Evidence\s*</button>[ \t]*\n\s*\n)` +
		`([ \t]*<button\s+aria-label="Open settings")`
	DefaultTmpl = "${1}${3}"
)

type Config struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Spec       Spec   `yaml:"spec"`
}

type Spec struct {
	TargetFile TargetFile `yaml:"targetFile"`
	Message    string     `yaml:"message"`
	Git        Git        `yaml:"git"`
}

type TargetFile struct {
	Path     string `yaml:"path"`
	Replacer string `yaml:"replacer"`
	Regex    Regex  `yaml:"regex"`
}

type Regex struct {
	Pattern string `yaml:"pattern"`
	Tmpl    string `yaml:"tmpl"`
}

type Git struct {
	Commit        bool   `yaml:"commit"`
	RequireClean  bool   `yaml:"requireClean"`
	AuthorName    string `yaml:"authorName"`
	AuthorEmail   string `yaml:"authorEmail"`
	CommitMessage string `yaml:"commitMessage"`
}

// Overrides carries values set on the command line. Zero values leave the
// file or default value in place.
type Overrides struct {
	Path         string
	Commit       bool
	RequireClean bool
	AuthorName   string
	AuthorEmail  string
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return &Config{
		APIVersion: APIVersion,
		Kind:       Kind,
		Spec: Spec{
			TargetFile: TargetFile{
				Path:     DefaultPath,
				Replacer: "regex",
				Regex: Regex{
					Pattern: DefaultPattern,
					Tmpl:    DefaultTmpl,
				},
			},
			Message: DefaultMessage,
			Git: Git{
				AuthorName:    "button-prune",
				AuthorEmail:   "button-prune@localhost",
				CommitMessage: "remove duplicate Evidence button",
			},
		},
	}
}

func (c *Config) Validate() error {
	if c.Kind != Kind {
		return fmt.Errorf("kind must be %s, got %q", Kind, c.Kind)
	}
	if c.Spec.TargetFile.Path == "" {
		return fmt.Errorf("targetFile.path is required")
	}
	if c.Spec.TargetFile.Replacer != "regex" {
		return fmt.Errorf("invalid replacer: %s", c.Spec.TargetFile.Replacer)
	}
	if c.Spec.TargetFile.Regex.Pattern == "" {
		return fmt.Errorf("targetFile.regex.pattern is required")
	}
	if c.Spec.Git.Commit {
		if c.Spec.Git.AuthorName == "" || c.Spec.Git.AuthorEmail == "" {
			return fmt.Errorf("git.authorName and git.authorEmail are required to commit")
		}
		if c.Spec.Git.CommitMessage == "" {
			return fmt.Errorf("git.commitMessage is required to commit")
		}
	}
	return nil
}

// GetConfig loads the config file at path, if any, and layers the overrides
// on top of it.
func GetConfig(path string, o Overrides) (*Config, error) {
	var fileConfig *Config
	if path != "" {
		c, err := ReadConfig(path)
		if err != nil {
			return nil, err
		}
		fileConfig = c
	}
	return FinalizeConfig(fileConfig, o)
}

func ReadConfig(path string) (*Config, error) {
	fileBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	c := Config{}
	err = yaml.UnmarshalWithOptions(fileBytes, &c, yaml.DisallowUnknownField())
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &c, nil
}

// FinalizeConfig fills every unset field of fileConfig from the defaults,
// applies the overrides and validates the result.
func FinalizeConfig(fileConfig *Config, o Overrides) (*Config, error) {
	finalConf := Default()
	if fileConfig != nil {
		if fileConfig.APIVersion != "" {
			finalConf.APIVersion = fileConfig.APIVersion
		}
		if fileConfig.Kind != "" {
			finalConf.Kind = fileConfig.Kind
		}
		tf := fileConfig.Spec.TargetFile
		if tf.Path != "" {
			finalConf.Spec.TargetFile.Path = tf.Path
		}
		if tf.Replacer != "" {
			finalConf.Spec.TargetFile.Replacer = tf.Replacer
		}
		if tf.Regex.Pattern != "" {
			finalConf.Spec.TargetFile.Regex.Pattern = tf.Regex.Pattern
			// a custom pattern never inherits the default template
			finalConf.Spec.TargetFile.Regex.Tmpl = tf.Regex.Tmpl
		} else if tf.Regex.Tmpl != "" {
			finalConf.Spec.TargetFile.Regex.Tmpl = tf.Regex.Tmpl
		}
		if fileConfig.Spec.Message != "" {
			finalConf.Spec.Message = fileConfig.Spec.Message
		}
		g := fileConfig.Spec.Git
		finalConf.Spec.Git.Commit = g.Commit
		finalConf.Spec.Git.RequireClean = g.RequireClean
		if g.AuthorName != "" {
			finalConf.Spec.Git.AuthorName = g.AuthorName
		}
		if g.AuthorEmail != "" {
			finalConf.Spec.Git.AuthorEmail = g.AuthorEmail
		}
		if g.CommitMessage != "" {
			finalConf.Spec.Git.CommitMessage = g.CommitMessage
		}
	}

	if o.Path != "" {
		finalConf.Spec.TargetFile.Path = o.Path
	}
	if o.Commit {
		finalConf.Spec.Git.Commit = true
	}
	if o.RequireClean {
		finalConf.Spec.Git.RequireClean = true
	}
	if o.AuthorName != "" {
		finalConf.Spec.Git.AuthorName = o.AuthorName
	}
	if o.AuthorEmail != "" {
		finalConf.Spec.Git.AuthorEmail = o.AuthorEmail
	}

	err := finalConf.Validate()
	if err != nil {
		return nil, err
	}
	return finalConf, nil
}
