// Package sitetree mirrors a source directory tree into an output tree.
//
// Every source directory becomes an output directory holding a generated
// index.html: the shared header, the directory's own index.p.html fragment,
// the shared middle fragment, a breadcrumb, a listing table and the shared
// index footer. Page fragments (*.p.html) are wrapped; other files are
// copied, except *.p.md when Markdown rendering is enabled.
//
// Folder paths are slash-separated and rooted: "" is the source root and its
// children are "/a", "/a/b". Hrefs in generated pages are built from these
// paths, so the output is meant to be served from the site root.
package sitetree
