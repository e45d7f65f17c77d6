// Package stage resolves configuration files kept in the staging directory.
package stage

import "path/filepath"

// Resolver joins relative names onto the staging directory.
type Resolver struct {
	// Root is the staging directory.
	Root string
}

// New returns a Resolver for root.
func New(root string) Resolver {
	return Resolver{Root: root}
}

// Path returns the absolute path of a staged file. The file is not checked for existence.
func (r Resolver) Path(relative string) string {
	return filepath.Join(r.Root, relative)
}
