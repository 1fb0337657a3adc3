//go:build !unix

package discovery

import "io/fs"

// inodeIdentity always returns the sentinel "()" on platforms without
// POSIX inode semantics exposed through os.FileInfo.Sys().
func inodeIdentity(info fs.FileInfo) string {
	return "()"
}
