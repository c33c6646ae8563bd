package sitetree

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MissingSize is shown for paths that do not exist.
const MissingSize = "---"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize scales n by 1024 until it drops below 1024 and prints it with
// two decimals. Anything beyond the terabyte range stays in TB.
func FormatSize(n int64) string {
	size := float64(n)
	for i, unit := range sizeUnits {
		if size < 1024 || i == len(sizeUnits)-1 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024
	}
	return MissingSize
}

// SizeString formats the size of path: the file size for files, the recursive
// total of all contained files for directories, MissingSize when absent.
func SizeString(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return MissingSize
	}
	switch {
	case info.Mode().IsRegular():
		return FormatSize(info.Size())
	case info.IsDir():
		return FormatSize(dirSize(path))
	default:
		return MissingSize
	}
}

// dirSize sums the sizes of all files below root. Unreadable entries count as zero.
func dirSize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			total += info.Size()
		}
		return nil
	})
	return total
}
