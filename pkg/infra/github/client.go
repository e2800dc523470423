package github

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relcopy/pkg/domain/interfaces"
	"github.com/m-mizutani/relcopy/pkg/domain/model"
	"github.com/m-mizutani/relcopy/pkg/domain/types"
)

const defaultMediaType = "application/octet-stream"

type client struct {
	githubClient   *github.Client
	downloadClient *http.Client
}

// config holds internal client configuration
type config struct {
	apiURL         string
	uploadURL      string
	downloadClient *http.Client
}

// Option is a functional option for the GitHub client
type Option func(*config)

// WithAPIURL sets the GitHub Enterprise host or REST API endpoint, e.g. https://ghe.example.com/api/v3/.
// "api/v3/" is appended when missing.
func WithAPIURL(apiURL string) Option {
	return func(c *config) {
		c.apiURL = apiURL
	}
}

// WithUploadURL sets the asset upload endpoint. "api/uploads/" is appended when missing.
// It defaults to the API URL host when only that one is set.
func WithUploadURL(uploadURL string) Option {
	return func(c *config) {
		c.uploadURL = uploadURL
	}
}

// WithDownloadClient sets the HTTP client that follows asset download redirects.
// It must not attach the GitHub credential because the redirect target is a pre-signed URL.
func WithDownloadClient(httpClient *http.Client) Option {
	return func(c *config) {
		c.downloadClient = httpClient
	}
}

// NewClient creates a new GitHub client authenticated with a personal access token
func NewClient(token string, opts ...Option) (interfaces.GitHubClient, error) {
	if token == "" {
		return nil, goerr.New("GitHub token is empty", goerr.T(types.ErrTagConfig))
	}

	cfg := &config{
		downloadClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	githubClient := github.NewClient(nil).WithAuthToken(token)

	if cfg.apiURL != "" || cfg.uploadURL != "" {
		apiURL, uploadURL, err := enterpriseURLs(cfg.apiURL, cfg.uploadURL, githubClient.BaseURL.String())
		if err != nil {
			return nil, err
		}

		githubClient, err = githubClient.WithEnterpriseURLs(apiURL, uploadURL)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to set GitHub Enterprise URLs",
				goerr.V("api_url", apiURL),
				goerr.V("upload_url", uploadURL),
				goerr.T(types.ErrTagConfig),
			)
		}
	}

	return &client{
		githubClient:   githubClient,
		downloadClient: cfg.downloadClient,
	}, nil
}

// enterpriseURLs fills in the endpoint that is not set. A missing upload URL points at the
// API host root, so go-github derives "api/uploads/" from it.
func enterpriseURLs(apiURL, uploadURL, defaultAPIURL string) (string, string, error) {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	api, err := parseEndpoint(apiURL)
	if err != nil {
		return "", "", err
	}

	if uploadURL == "" {
		root := *api
		root.Path = strings.TrimSuffix(root.Path, "api/v3/")
		return api.String(), root.String(), nil
	}

	upload, err := parseEndpoint(uploadURL)
	if err != nil {
		return "", "", err
	}
	return api.String(), upload.String(), nil
}

// parseEndpoint parses an absolute endpoint URL and makes sure it ends with a slash
func parseEndpoint(endpoint string) (*url.URL, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse GitHub endpoint URL",
			goerr.V("url", endpoint),
			goerr.T(types.ErrTagConfig),
		)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, goerr.New("GitHub endpoint URL must be absolute",
			goerr.V("url", endpoint),
			goerr.T(types.ErrTagConfig),
		)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// GetReleaseByTag fetches the release metadata and asset list for a tag
func (c *client) GetReleaseByTag(ctx context.Context, repo model.Repository, tag string) (*model.Release, error) {
	release, _, err := c.githubClient.Repositories.GetReleaseByTag(ctx, repo.Owner, repo.Name, tag)
	if err != nil {
		return nil, wrapAPIError(err, "failed to get release by tag",
			goerr.V("repo", repo.FullName()),
			goerr.V("tag", tag),
		)
	}

	return toRelease(release), nil
}

// CreateRelease creates a new release and returns it with the assigned ID
func (c *client) CreateRelease(ctx context.Context, repo model.Repository, release *model.Release) (*model.Release, error) {
	req := &github.RepositoryRelease{
		TagName: github.Ptr(release.TagName),
		Name:    release.Name,
		Body:    release.Body,
	}
	if release.TargetCommitish != "" {
		req.TargetCommitish = github.Ptr(release.TargetCommitish)
	}
	if release.Prerelease {
		req.Prerelease = github.Ptr(true)
	}

	created, _, err := c.githubClient.Repositories.CreateRelease(ctx, repo.Owner, repo.Name, req)
	if err != nil {
		return nil, wrapAPIError(err, "failed to create release",
			goerr.V("repo", repo.FullName()),
			goerr.V("tag", release.TagName),
		)
	}

	return toRelease(created), nil
}

// DownloadReleaseAsset opens the binary content of an asset
func (c *client) DownloadReleaseAsset(ctx context.Context, repo model.Repository, asset *model.Asset) (io.ReadCloser, error) {
	rc, _, err := c.githubClient.Repositories.DownloadReleaseAsset(ctx, repo.Owner, repo.Name, asset.ID, c.downloadClient)
	if err != nil {
		return nil, wrapAPIError(err, "failed to download release asset",
			goerr.V("repo", repo.FullName()),
			goerr.V("asset", asset.Name),
			goerr.V("url", asset.URL),
			goerr.T(types.ErrTagTransfer),
		)
	}

	return rc, nil
}

// UploadReleaseAsset attaches a file to a release under the asset's name
func (c *client) UploadReleaseAsset(ctx context.Context, repo model.Repository, releaseID int64, asset *model.Asset, file *os.File) error {
	opts := &github.UploadOptions{
		Name:      asset.Name,
		Label:     asset.Label,
		MediaType: mediaTypeOf(asset),
	}

	if _, _, err := c.githubClient.Repositories.UploadReleaseAsset(ctx, repo.Owner, repo.Name, releaseID, opts, file); err != nil {
		return wrapAPIError(err, "failed to upload release asset",
			goerr.V("repo", repo.FullName()),
			goerr.V("release_id", releaseID),
			goerr.V("asset", asset.Name),
			goerr.T(types.ErrTagTransfer),
		)
	}

	return nil
}

// mediaTypeOf keeps the source content type, then guesses from the extension
func mediaTypeOf(asset *model.Asset) string {
	if asset.ContentType != "" {
		return asset.ContentType
	}
	if mediaType := mime.TypeByExtension(filepath.Ext(asset.Name)); mediaType != "" {
		return mediaType
	}
	return defaultMediaType
}

// wrapAPIError wraps a go-github error and tags it by HTTP status
func wrapAPIError(err error, msg string, opts ...goerr.Option) error {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		opts = append(opts, goerr.V("status", errResp.Response.StatusCode))

		switch errResp.Response.StatusCode {
		case http.StatusNotFound:
			opts = append(opts, goerr.T(types.ErrTagNotFound))
		case http.StatusUnauthorized, http.StatusForbidden:
			opts = append(opts, goerr.T(types.ErrTagUnauthorized))
		case http.StatusUnprocessableEntity:
			if hasErrorCode(errResp, "already_exists") {
				opts = append(opts, goerr.T(types.ErrTagConflict))
			}
		}
	}

	return goerr.Wrap(err, msg, opts...)
}

func hasErrorCode(errResp *github.ErrorResponse, code string) bool {
	for _, e := range errResp.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

func toRelease(r *github.RepositoryRelease) *model.Release {
	release := &model.Release{
		ID:              r.GetID(),
		TagName:         r.GetTagName(),
		TargetCommitish: r.GetTargetCommitish(),
		Name:            optionalString(r.Name),
		Body:            optionalString(r.Body),
		Prerelease:      r.GetPrerelease(),
		HTMLURL:         r.GetHTMLURL(),
	}

	for _, a := range r.Assets {
		release.Assets = append(release.Assets, &model.Asset{
			ID:          a.GetID(),
			URL:         a.GetURL(),
			Name:        a.GetName(),
			Label:       a.GetLabel(),
			ContentType: a.GetContentType(),
			Size:        int64(a.GetSize()),
		})
	}

	return release
}

// optionalString maps both null and "" to nil
func optionalString(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
