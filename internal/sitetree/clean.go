package sitetree

import (
	"log/slog"
	"os"

	berrors "git.home.luguber.info/inful/webbuild/internal/errors"
	"git.home.luguber.info/inful/webbuild/internal/logfields"
)

// Clean removes the output tree. An absent output root is not an error.
func Clean(outputRoot string) error {
	slog.Info("Cleaning build folder", logfields.Output(outputRoot))
	if err := os.RemoveAll(outputRoot); err != nil {
		return berrors.FilesystemError("remove", outputRoot, err)
	}
	return nil
}
