package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relcopy/pkg/domain/interfaces"
	"github.com/m-mizutani/relcopy/pkg/domain/types"
	githubinfra "github.com/m-mizutani/relcopy/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub configuration
type GitHub struct {
	Token     string `masq:"secret"`
	APIURL    string
	UploadURL string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub personal access token",
			Destination: &c.Token,
			Sources:     cli.EnvVars("GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub REST API URL (for GitHub Enterprise Server)",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("GITHUB_API_URL"),
		},
		&cli.StringFlag{
			Name:        "github-upload-url",
			Usage:       "GitHub release asset upload URL (defaults to the API URL when that is set)",
			Destination: &c.UploadURL,
			Sources:     cli.EnvVars("GITHUB_UPLOAD_URL"),
		},
	}
}

// Validate checks that a credential is available
func (c *GitHub) Validate() error {
	if c.Token == "" {
		return goerr.New("GITHUB_TOKEN must be set. Generate a Personal Access Token in your GitHub settings.",
			goerr.T(types.ErrTagConfig),
		)
	}
	return nil
}

// NewClient creates a GitHub API client from the configuration
func (c *GitHub) NewClient() (interfaces.GitHubClient, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var opts []githubinfra.Option
	if c.APIURL != "" {
		opts = append(opts, githubinfra.WithAPIURL(c.APIURL))
	}
	if c.UploadURL != "" {
		opts = append(opts, githubinfra.WithUploadURL(c.UploadURL))
	}

	return githubinfra.NewClient(c.Token, opts...)
}
