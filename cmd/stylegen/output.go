package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// shouldShowProgress reports whether live progress lines make sense on out.
func shouldShowProgress(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
