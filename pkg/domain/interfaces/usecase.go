package interfaces

import (
	"context"

	"github.com/m-mizutani/relcopy/pkg/domain/model"
)

// ReleaseUseCase defines operations for copying a release between repositories
type ReleaseUseCase interface {
	// GetRelease reads the release metadata and asset list from a repository
	GetRelease(ctx context.Context, repo model.Repository, tag string) (*model.Release, error)

	// CopyRelease recreates the release on the destination and transfers every asset
	CopyRelease(ctx context.Context, input *model.CopyInput) (*model.CopyResult, error)
}

// Notifier sends a message when a copy run has finished
type Notifier interface {
	NotifyCopied(ctx context.Context, result *model.CopyResult) error
}
