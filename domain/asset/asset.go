// Package asset defines runtime asset descriptors, the handler
// contract for (de)serializing them, and the handler registry that
// announces registrations on the in-process bus.
package asset

// Asset is one loadable runtime object. Data holds the decoded
// payload; its schema belongs to the handler that produced it.
type Asset struct {
	ID   uint64
	Type string
	Data map[string]any
}

// Handler serializes and deserializes one asset type.
type Handler interface {
	// Type is the asset type this handler serves, e.g. "runtime-graph".
	Type() string

	// DisplayName is a human-readable label for tooling.
	DisplayName() string

	// Extensions lists the file extensions the handler claims,
	// without the leading dot.
	Extensions() []string

	// New creates an empty asset of this handler's type.
	New(id uint64) *Asset

	// Load decodes a stored frame into the asset in place.
	Load(a *Asset, frame []byte) error

	// Save encodes the asset into a stored frame.
	Save(a *Asset) ([]byte, error)
}
