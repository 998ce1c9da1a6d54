package landmarks

import (
	"github.com/vectome/vectome/internal/sketch"
)

// FormatVersion is the manifest layout version written by this package.
const FormatVersion = 1

// Manifest is the authoritative on-disk record of a built group.
type Manifest struct {
	FormatVersion int             `json:"format_version"`
	GroupID       int             `json:"group_id"`
	Name          string          `json:"name"`
	BuildID       string          `json:"build_id"`
	CreatedAt     string          `json:"created_at"`
	Source        string          `json:"source"`
	Built         bool            `json:"built"`
	Landmarks     []ManifestEntry `json:"landmarks"`
}

// ManifestEntry describes one cached landmark sketch. SketchFile is relative
// to the group directory.
type ManifestEntry struct {
	ID         string `json:"id"`
	SketchFile string `json:"sketch_file"`
	Hashes     int    `json:"hashes"`
	KSize      int    `json:"ksize,omitempty"`
}

// IDs returns landmark identifiers in manifest order.
func (m Manifest) IDs() []string {
	out := make([]string, len(m.Landmarks))
	for i, e := range m.Landmarks {
		out[i] = e.ID
	}
	return out
}

// BuildStatus is one of NotBuilt, Built or Corrupt.
type BuildStatus interface {
	String() string
	buildStatus()
}

// NotBuilt means no manifest exists for the group.
type NotBuilt struct{}

// Built carries the manifest of a complete group.
type Built struct {
	Manifest Manifest
}

// Corrupt means a manifest exists but the group cannot be loaded.
type Corrupt struct {
	Reason string
}

func (NotBuilt) String() string { return "not built" }
func (Built) String() string    { return "built" }
func (Corrupt) String() string  { return "corrupt" }

func (NotBuilt) buildStatus() {}
func (Built) buildStatus()    {}
func (Corrupt) buildStatus()  {}

// Landmark is one reference genome of a loaded group.
type Landmark struct {
	ID     string
	Sketch *sketch.Sketch
}

// Group is a loaded, fully built landmark group. Values are only produced
// by Store.Load and Store.Build and are safe for concurrent readers.
type Group struct {
	ID           int
	Name         string
	Dir          string
	ManifestPath string
	Manifest     Manifest
	Landmarks    []Landmark
}

// Status returns Built{g.Manifest}.
func (g *Group) Status() BuildStatus { return Built{Manifest: g.Manifest} }

// IDs returns landmark identifiers in embedding order.
func (g *Group) IDs() []string { return g.Manifest.IDs() }

// Sketches returns landmark sketches in embedding order.
func (g *Group) Sketches() []*sketch.Sketch {
	out := make([]*sketch.Sketch, len(g.Landmarks))
	for i, lm := range g.Landmarks {
		out[i] = lm.Sketch
	}
	return out
}

// GroupStatus is the Describe view of one catalog group.
type GroupStatus struct {
	ID           int
	Name         string
	Description  string
	Landmarks    int
	ManifestPath string
	Status       BuildStatus
}

// Built reports whether the group is built and intact.
func (s GroupStatus) Built() bool {
	_, ok := s.Status.(Built)
	return ok
}

// Description is the result of Store.Describe.
type Description struct {
	Groups        []GroupStatus
	CacheLocation string
	CacheExists   bool
}
