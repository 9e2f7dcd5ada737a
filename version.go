package hindsight

import (
	_ "embed"
)

// Version is the current release of hindsight, embedded from the VERSION
// file at the repository root.
//
//go:embed VERSION
var Version string
