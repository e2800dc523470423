package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relcopy/pkg/domain/model"
	"github.com/m-mizutani/relcopy/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Copy holds the release copy target configuration
type Copy struct {
	From       string
	To         string
	Release    string
	ConfigFile string
	DryRun     bool
	Progress   bool
}

// copyFile is the layout of the optional TOML configuration file
type copyFile struct {
	From    string `toml:"from"`
	To      string `toml:"to"`
	Release string `toml:"release"`
}

// Flags returns CLI flags for copy configuration
func (c *Copy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "from",
			Usage:       "GitHub repo to copy FROM, e.g. myname/old-repo",
			Destination: &c.From,
			Sources:     cli.EnvVars("RELCOPY_FROM"),
		},
		&cli.StringFlag{
			Name:        "to",
			Usage:       "GitHub repo to copy TO, e.g. myfriend/new-repo",
			Destination: &c.To,
			Sources:     cli.EnvVars("RELCOPY_TO"),
		},
		&cli.StringFlag{
			Name:        "release",
			Usage:       "Release tag name to copy, e.g. v1.0.0",
			Destination: &c.Release,
			Sources:     cli.EnvVars("RELCOPY_RELEASE"),
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML file providing from, to and release",
			TakesFile:   true,
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("RELCOPY_CONFIG"),
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Show the release that would be copied without writing to the destination",
			Destination: &c.DryRun,
			Sources:     cli.EnvVars("RELCOPY_DRY_RUN"),
		},
		&cli.BoolFlag{
			Name:        "progress",
			Usage:       "Show download progress bars on stderr",
			Destination: &c.Progress,
			Sources:     cli.EnvVars("RELCOPY_PROGRESS"),
		},
	}
}

// Input builds the copy input. Values given by flags take precedence over the config file.
func (c *Copy) Input() (*model.CopyInput, error) {
	if c.ConfigFile != "" {
		if err := c.load(c.ConfigFile); err != nil {
			return nil, err
		}
	}

	required := []struct {
		name  string
		value string
	}{
		{"from", c.From},
		{"to", c.To},
		{"release", c.Release},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, goerr.New("required option is missing",
				goerr.V("option", r.name),
				goerr.T(types.ErrTagInvalidInput),
			)
		}
	}

	from, err := model.ParseRepository(c.From)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid source repository")
	}
	to, err := model.ParseRepository(c.To)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid destination repository")
	}

	return &model.CopyInput{
		From: from,
		To:   to,
		Tag:  c.Release,
	}, nil
}

func (c *Copy) load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file",
			goerr.V("path", path),
			goerr.T(types.ErrTagConfig),
		)
	}

	var file copyFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return goerr.Wrap(err, "failed to parse config file",
			goerr.V("path", path),
			goerr.T(types.ErrTagConfig),
		)
	}

	if c.From == "" {
		c.From = file.From
	}
	if c.To == "" {
		c.To = file.To
	}
	if c.Release == "" {
		c.Release = file.Release
	}

	return nil
}
