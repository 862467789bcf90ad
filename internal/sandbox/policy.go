package sandbox

import (
	"slices"
	"time"
)

// Policy defines resource limits for sandbox execution.
type Policy struct {
	MaxMemory  string        // Docker memory limit (e.g. "256m")
	MaxTimeout time.Duration // Maximum execution time
	Network    bool          // Whether network access is allowed
	Images     []string      // Allowed Docker images
}

// DefaultPolicy returns safe defaults for code execution. The image
// allowlist covers every runtime in the language table.
func DefaultPolicy() Policy {
	p := Policy{
		MaxMemory:  "256m",
		MaxTimeout: 30 * time.Second,
		Network:    false,
	}
	for _, rt := range runtimes {
		if !slices.Contains(p.Images, rt.Image) {
			p.Images = append(p.Images, rt.Image)
		}
	}
	return p
}

// IsImageAllowed checks if an image is on the allowlist.
func (p Policy) IsImageAllowed(image string) bool {
	return slices.Contains(p.Images, image)
}
