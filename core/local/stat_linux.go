//go:build linux

package local

import (
	"io/fs"
	"syscall"
	"time"
)

// createdAt returns the inode change time, the closest portable value to a
// birth time on Linux.
func createdAt(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
	}
	return info.ModTime()
}
