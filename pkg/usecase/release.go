package usecase

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relcopy/pkg/domain/interfaces"
	"github.com/m-mizutani/relcopy/pkg/domain/model"
	"github.com/m-mizutani/relcopy/pkg/domain/types"
	"github.com/m-mizutani/relcopy/pkg/utils/progress"
)

const stagingDirPattern = "release-assets-*"

type releaseUseCase struct {
	githubClient interfaces.GitHubClient
	tempRoot     string
	tracker      *progress.Tracker
}

// ReleaseOption is a functional option for the release use case
type ReleaseOption func(*releaseUseCase)

// WithTempRoot sets the parent directory of per-asset staging directories.
// Empty means the OS default temporary directory.
func WithTempRoot(dir string) ReleaseOption {
	return func(uc *releaseUseCase) {
		uc.tempRoot = dir
	}
}

// WithProgress renders download progress bars to w
func WithProgress(w io.Writer) ReleaseOption {
	return func(uc *releaseUseCase) {
		uc.tracker = progress.New(w)
	}
}

// NewRelease creates a new instance of ReleaseUseCase
func NewRelease(githubClient interfaces.GitHubClient, opts ...ReleaseOption) interfaces.ReleaseUseCase {
	uc := &releaseUseCase{
		githubClient: githubClient,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GetRelease reads the release metadata and asset list from a repository
func (uc *releaseUseCase) GetRelease(ctx context.Context, repo model.Repository, tag string) (*model.Release, error) {
	logger := ctxlog.From(ctx)

	release, err := uc.githubClient.GetReleaseByTag(ctx, repo, tag)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read source release",
			goerr.V("repo", repo.FullName()),
			goerr.V("tag", tag),
		)
	}

	logger.Debug("Fetched release",
		"repo", repo.FullName(),
		"tag", release.TagName,
		"target_commitish", release.TargetCommitish,
		"asset_count", len(release.Assets),
	)

	return release, nil
}

// CopyRelease recreates the release on the destination and transfers every asset
func (uc *releaseUseCase) CopyRelease(ctx context.Context, input *model.CopyInput) (*model.CopyResult, error) {
	logger := ctxlog.From(ctx)

	source, err := uc.GetRelease(ctx, input.From, input.Tag)
	if err != nil {
		return nil, err
	}

	created, err := uc.githubClient.CreateRelease(ctx, input.To, &model.Release{
		TagName:         source.TagName,
		TargetCommitish: source.TargetCommitish,
		Name:            source.Name,
		Body:            source.Body,
		Prerelease:      source.Prerelease,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create destination release",
			goerr.V("repo", input.To.FullName()),
			goerr.V("tag", source.TagName),
		)
	}

	logger.Debug("Created release",
		"repo", input.To.FullName(),
		"tag", source.TagName,
		"release_id", created.ID,
	)

	result := &model.CopyResult{
		Tag:       input.Tag,
		From:      input.From,
		To:        input.To,
		ReleaseID: created.ID,
		HTMLURL:   created.HTMLURL,
	}

	// Each asset is downloaded and uploaded before the next one starts
	for _, asset := range source.Assets {
		logger.Info("Downloading asset", "asset", asset.Name)
		staged, err := uc.downloadAsset(ctx, input.From, asset)
		if err != nil {
			return nil, err
		}

		logger.Info("Uploading asset", "asset", asset.Name)
		if err := uc.uploadAsset(ctx, input.To, created.ID, staged); err != nil {
			return nil, err
		}

		result.Assets = append(result.Assets, asset.Name)
	}

	logger.Info("Release copied",
		"tag", input.Tag,
		"from", input.From.FullName(),
		"to", input.To.FullName(),
	)

	return result, nil
}

// downloadAsset writes the asset content into a fresh temporary directory.
// The directory is left in place.
func (uc *releaseUseCase) downloadAsset(ctx context.Context, repo model.Repository, asset *model.Asset) (*model.StagedAsset, error) {
	logger := ctxlog.From(ctx)

	if err := validateAssetName(asset.Name); err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp(uc.tempRoot, stagingDirPattern)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temporary directory")
	}

	if err := os.Chmod(tempDir, 0700); err != nil {
		return nil, goerr.Wrap(err, "failed to set directory permissions", goerr.V("temp_dir", tempDir))
	}

	logger.Debug("Created temporary directory", "temp_dir", tempDir, "asset", asset.Name)

	rc, err := uc.githubClient.DownloadReleaseAsset(ctx, repo, asset)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download asset", goerr.V("asset", asset.Name))
	}
	rc = uc.tracker.Reader(asset.Name, asset.Size, rc)
	defer rc.Close()

	assetPath := filepath.Join(tempDir, asset.Name)
	file, err := os.OpenFile(assetPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create staged file", goerr.V("path", assetPath))
	}
	defer file.Close()

	size, err := io.Copy(file, rc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to write asset content",
			goerr.V("asset", asset.Name),
			goerr.V("path", assetPath),
			goerr.T(types.ErrTagTransfer),
		)
	}

	if err := file.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close staged file", goerr.V("path", assetPath))
	}

	logger.Debug("Staged asset", "asset", asset.Name, "path", assetPath, "size_bytes", size)

	return &model.StagedAsset{
		Asset: asset,
		Path:  assetPath,
		Size:  size,
	}, nil
}

// uploadAsset attaches the staged file to the destination release byte for byte
func (uc *releaseUseCase) uploadAsset(ctx context.Context, repo model.Repository, releaseID int64, staged *model.StagedAsset) error {
	file, err := os.Open(staged.Path)
	if err != nil {
		return goerr.Wrap(err, "failed to open staged file", goerr.V("path", staged.Path))
	}
	defer file.Close()

	if err := uc.githubClient.UploadReleaseAsset(ctx, repo, releaseID, staged.Asset, file); err != nil {
		return goerr.Wrap(err, "failed to upload asset",
			goerr.V("asset", staged.Asset.Name),
			goerr.V("release_id", releaseID),
		)
	}

	return nil
}

// validateAssetName rejects names that would escape the staging directory
func validateAssetName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return goerr.New("invalid asset name",
			goerr.V("asset", name),
			goerr.T(types.ErrTagInvalidInput),
		)
	}
	return nil
}
