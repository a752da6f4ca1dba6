//go:build linux

package filesystem

import (
	"os"
	"syscall"
	"time"
)

// fileTimes returns the creation and modification times of a file.
// Linux exposes no birth time through stat, so the inode change time stands in.
func fileTimes(info os.FileInfo) (created, modified time.Time) {
	modified = info.ModTime()
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec)), modified
	}
	return modified, modified
}
