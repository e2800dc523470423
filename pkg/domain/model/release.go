package model

// Release represents the descriptive metadata of a release and its attached assets
type Release struct {
	ID              int64    // Release ID, assigned by the repository that owns it
	TagName         string   // Release tag name
	TargetCommitish string   // Branch or commit the release points to
	Name            *string  // Display name, nil if the release has none
	Body            *string  // Description text, nil if the release has none
	Prerelease      bool     // Whether the release is marked as a pre-release
	HTMLURL         string   // Web page of the release
	Assets          []*Asset // Attached binary files, in API order
}

// GetName returns the display name or an empty string
func (r *Release) GetName() string {
	if r == nil || r.Name == nil {
		return ""
	}
	return *r.Name
}

// GetBody returns the description text or an empty string
func (r *Release) GetBody() string {
	if r == nil || r.Body == nil {
		return ""
	}
	return *r.Body
}

// Asset represents one binary file attached to a release
type Asset struct {
	ID          int64  // Asset ID on the source repository
	URL         string // API locator of the asset
	Name        string // File name
	Label       string // Optional short description shown instead of the file name
	ContentType string // Media type reported by GitHub
	Size        int64  // Size in bytes
}

// CopyInput describes one copy run
type CopyInput struct {
	From Repository // Source repository
	To   Repository // Destination repository
	Tag  string     // Tag of the release to copy
}

// CopyResult summarizes a finished copy run
type CopyResult struct {
	Tag       string     // Copied tag
	From      Repository // Source repository
	To        Repository // Destination repository
	ReleaseID int64      // Release ID on the destination
	HTMLURL   string     // Web page of the destination release
	Assets    []string   // Names of the uploaded assets, in upload order
}
