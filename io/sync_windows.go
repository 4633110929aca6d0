//go:build windows

package io

// directories cannot be fsynced on windows, rename durability is left to the filesystem
func syncDir(dir string) error {
	return nil
}
