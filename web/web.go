package web

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Photo is one entry in a gallery page.
type Photo struct {
	Identifier string
	Path       string // Absolute path of the saved photo.
}

// BuildGallery constructs an html web page displaying the given photos, each
// captioned with its identifier. Photo paths are referenced relative to
// baseDir when possible so the page can be moved together with the photos.
func BuildGallery(title string, baseDir string, photos []Photo) string {
	sb := strings.Builder{}

	sb.WriteString(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
`)
	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(title)))
	sb.WriteString(`</head>
<body>
`)

	for _, p := range photos {
		src := galleryRef(baseDir, p.Path)
		id := html.EscapeString(p.Identifier)
		sb.WriteString(fmt.Sprintf("<figure><img src=\"%s\" alt=\"%s\"><figcaption>%s</figcaption></figure>\n",
			html.EscapeString(src), id, id))
	}

	sb.WriteString(`</body>
</html>
`)

	return sb.String()
}

// galleryRef returns the img src for path as seen from a page in baseDir.
func galleryRef(baseDir string, path string) string {
	if baseDir != "" {
		rel, err := filepath.Rel(baseDir, path)
		if err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return "file://" + filepath.ToSlash(path)
}
