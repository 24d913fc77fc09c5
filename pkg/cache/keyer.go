package cache

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey returns the key of a rendered artifact.
	ArtifactKey(paramsHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the output options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Format  string `json:"format"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Title   string `json:"title,omitempty"`
	Version string `json:"version"` // algorithm version
}

// DefaultKeyer produces keys of the form "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey hashes the descriptor hash together with the options.
func (DefaultKeyer) ArtifactKey(paramsHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", paramsHash, opts)
}
