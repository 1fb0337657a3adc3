//go:build unix

package discovery

import (
	"fmt"
	"io/fs"
	"syscall"
)

// inodeIdentity returns an opaque string identifying the underlying inode
// and device of info, or the sentinel "()" if the platform does not expose
// one through syscall.Stat_t.
//
// The format must contain no ':' — sortedrun's on-disk record format uses
// ':' as the key/path delimiter (see sortedrun.SplitLine), and FileKey joins
// length and this identity with '\'. A ':' here would be swallowed into the
// key on write-back, truncating distinct inodes on the same device down to
// the same key.
func inodeIdentity(info fs.FileInfo) string {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "()"
	}
	return fmt.Sprintf("(dev=%d,ino=%d)", stat.Dev, stat.Ino)
}
