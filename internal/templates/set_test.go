package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	berrors "git.home.luguber.info/inful/webbuild/internal/errors"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, HeaderFile, "<html>")
	writeFile(t, root, MiddleFile, "<hr>")
	writeFile(t, root, FooterFile, "</html><!--index-->")
	writeFile(t, root, PageFooterFile, "</html>")

	set, err := Load(root)
	require.NoError(t, err)
	require.Equal(t, "<html>", string(set.Header))
	require.Equal(t, "<hr>", string(set.Middle))
	require.Equal(t, "</html><!--index-->", string(set.Footer))
	require.Equal(t, "</html>", string(set.PageFooter))
}

func TestLoad_MissingFragment(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, HeaderFile, "<html>")
	writeFile(t, root, MiddleFile, "<hr>")
	writeFile(t, root, FooterFile, "</html>")

	_, err := Load(root)
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryTemplate))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestStylesheets(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "css/site.css", "body{}")
	writeFile(t, root, "css/index.css", "h1{}")
	writeFile(t, root, "css/notes.txt", "not a stylesheet")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "css", "fonts.css"), 0o750))

	names, err := Stylesheets(root)
	require.NoError(t, err)
	require.Equal(t, []string{"index.css", "site.css"}, names)
}

func TestStylesheets_MissingDir(t *testing.T) {
	_, err := Stylesheets(t.TempDir())
	require.Error(t, err)
	require.True(t, berrors.IsCategory(err, berrors.CategoryTemplate))
}
