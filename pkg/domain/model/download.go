package model

// StagedAsset represents an asset downloaded into a local temporary directory
type StagedAsset struct {
	Asset *Asset // Source asset descriptor
	Path  string // Path of the downloaded file, inside its own temporary directory
	Size  int64  // Number of bytes written
}
