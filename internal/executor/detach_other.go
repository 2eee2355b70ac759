//go:build !unix

package executor

import "syscall"

// Session detachment is not available on this platform
func detachedAttr() *syscall.SysProcAttr {
	return nil
}
