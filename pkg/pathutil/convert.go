// Package pathutil converts between editor file URIs, absolute paths and
// root-relative display paths.
//
// Paths are absolute everywhere inside the service; relative paths only
// appear in user-facing output.
package pathutil

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

const fileScheme = "file://"

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is outside root.
//
// Examples:
//   - ToRelative("/home/user/scripts/lib/util.nms", "/home/user/scripts") → "lib/util.nms"
//   - ToRelative("/other/util.nms", "/home/user/scripts") → "/other/util.nms"
//   - ToRelative("lib/util.nms", "/home/user/scripts") → "lib/util.nms"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}
	return relPath
}

// IsFileURI reports whether s uses the file scheme.
func IsFileURI(s string) bool {
	return strings.HasPrefix(s, fileScheme)
}

// URIToPath converts a file URI to a local path. Other strings are returned
// unchanged so plain paths pass through.
func URIToPath(uri string) string {
	if !IsFileURI(uri) {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, fileScheme)
	}
	p := u.Path
	// file:///c:/dir on Windows
	if runtime.GOOS == "windows" && len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}

// PathToURI converts an absolute path to a file URI.
func PathToURI(path string) string {
	if IsFileURI(path) {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
