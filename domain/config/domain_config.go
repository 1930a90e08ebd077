package config

import "time"

// DomainConfig holds flow-engine tunables
type DomainConfig struct {
	// MaxVersions caps the per-flow snapshot ledger; the oldest entry is
	// evicted first.
	MaxVersions int

	// AutoSnapshotInterval is the minimum elapsed time before a structural
	// change triggers an "Auto-saved" snapshot.
	AutoSnapshotInterval time.Duration

	// Placement heuristic for newly added nodes relative to the last active
	// node. Layout only, no correctness requirement beyond determinism.
	PlacementOffsetX float64
	PlacementOffsetY float64

	// DefaultOrigin is used when no last-active node exists.
	DefaultOriginX float64
	DefaultOriginY float64
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxVersions:          50,
		AutoSnapshotInterval: 120 * time.Second,
		PlacementOffsetX:     50,
		PlacementOffsetY:     150,
		DefaultOriginX:       250,
		DefaultOriginY:       60,
	}
}
