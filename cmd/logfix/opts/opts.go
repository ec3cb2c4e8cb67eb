package opts

import (
	"github.com/spf13/afero"
	"github.com/walteh/logfix/pkg/plan"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	// Plan is the built-in deribit plan unless --plan points at a file
	Plan *plan.Plan
	// Fs is rooted at --root
	Fs     afero.Fs
	DryRun bool
	Strict bool
}
