package interfaces

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/relcopy/pkg/domain/model"
)

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// GetReleaseByTag fetches the release metadata and asset list for a tag
	GetReleaseByTag(ctx context.Context, repo model.Repository, tag string) (*model.Release, error)

	// CreateRelease creates a new release and returns it with the assigned ID
	CreateRelease(ctx context.Context, repo model.Repository, release *model.Release) (*model.Release, error)

	// DownloadReleaseAsset opens the binary content of an asset. The caller must close the reader.
	DownloadReleaseAsset(ctx context.Context, repo model.Repository, asset *model.Asset) (io.ReadCloser, error)

	// UploadReleaseAsset attaches a file to a release under the asset's name
	UploadReleaseAsset(ctx context.Context, repo model.Repository, releaseID int64, asset *model.Asset, file *os.File) error
}
