package api

import (
	"os"
	"path/filepath"

	"github.com/voidshard/era5d/pkg/archive"
)

// Options passed to the era5d API on creation
type Options struct {
	// DownloadDir is where retrieved files are written. Files are named for their job
	// so several processes may share one directory.
	DownloadDir string

	// Archive configures the client used for retrievals & credential checks.
	Archive *archive.Options
}

// OptionsDefault writes files to a directory under the system temp dir & loads
// archive credentials from the environment or ~/.cdsapirc.
func OptionsDefault() *Options {
	return &Options{
		DownloadDir: filepath.Join(os.TempDir(), "era5d"),
		Archive:     &archive.Options{},
	}
}
