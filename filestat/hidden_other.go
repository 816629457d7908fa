//go:build !windows

package filestat

import "strings"

func isHidden(_ string, name string) bool {
	return strings.HasPrefix(name, ".")
}
