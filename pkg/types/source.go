// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"net/url"
	"path/filepath"
	"strings"
)

// SourceKind is the declared format of a document payload.
type SourceKind string

const (
	SourcePDF   SourceKind = "pdf"
	SourceImage SourceKind = "image"
	SourceURL   SourceKind = "url"
	SourceDOCX  SourceKind = "docx"
	SourceText  SourceKind = "text"
)

// Valid reports whether k is a supported source kind.
func (k SourceKind) Valid() bool {
	switch k {
	case SourcePDF, SourceImage, SourceURL, SourceDOCX, SourceText:
		return true
	}
	return false
}

// Document is one unit of pipeline input. Payload, when set, takes priority
// over Location; otherwise Location is a file path, an s3://bucket/key URI,
// or (for SourceURL) an http(s) URL.
type Document struct {
	// ID names the document in reports and export paths.
	ID string `json:"id" yaml:"id"`

	Kind SourceKind `json:"kind" yaml:"kind"`

	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	Payload []byte `json:"-" yaml:"-"`
}

var extensionKinds = map[string]SourceKind{
	".pdf":  SourcePDF,
	".png":  SourceImage,
	".jpg":  SourceImage,
	".jpeg": SourceImage,
	".tif":  SourceImage,
	".tiff": SourceImage,
	".bmp":  SourceImage,
	".gif":  SourceImage,
	".docx": SourceDOCX,
	".txt":  SourceText,
	".md":   SourceText,
}

// KindFromLocation infers the source kind from an http(s) scheme or a file
// extension. The second return is false when nothing matches.
func KindFromLocation(location string) (SourceKind, bool) {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return SourceURL, true
	}
	kind, ok := extensionKinds[strings.ToLower(filepath.Ext(location))]
	return kind, ok
}

// DocumentID derives a readable document ID from a location: the file name
// without extension, or host plus path for URLs.
func DocumentID(location string) string {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		id := u.Host + strings.TrimSuffix(u.Path, "/")
		return strings.NewReplacer("/", "-", ":", "-").Replace(id)
	}
	base := filepath.Base(location)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
