//go:build darwin

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// fileTimes returns the creation and modification times of a file.
func fileTimes(info os.FileInfo) (created, modified time.Time) {
	modified = info.ModTime()
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(st.Birthtimespec.Sec), int64(st.Birthtimespec.Nsec)), modified
	}
	return modified, modified
}
