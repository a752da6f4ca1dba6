//go:build !linux && !darwin

package filesystem

import (
	"os"
	"time"
)

// fileTimes returns the creation and modification times of a file.
func fileTimes(info os.FileInfo) (created, modified time.Time) {
	return info.ModTime(), info.ModTime()
}
