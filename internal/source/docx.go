// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/pdiddy/docgraph/pkg/types"
)

const docXMLMax = 50 << 20

// DOCX reads word/document.xml from a .docx archive: paragraphs become
// lines, table cells are tab-separated, and tracked deletions are skipped.
type DOCX struct {
	loader *Loader
}

func (s *DOCX) Extract(ctx context.Context, doc types.Document) (string, error) {
	data, err := s.loader.Load(ctx, doc)
	if err != nil {
		return "", err
	}
	return parseDocx(data)
}

func parseDocx(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", sourceFailure("opening docx: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", sourceFailure("document.xml not found in docx")
	}
	if docFile.UncompressedSize64 > docXMLMax {
		return "", sourceFailure("document.xml too large: %d bytes", docFile.UncompressedSize64)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", sourceFailure("opening document.xml: %w", err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(io.LimitReader(rc, docXMLMax))

	var sb strings.Builder
	var (
		inText    bool
		delDepth  int
		insideTbl bool
		cellIdx   int
	)

	newline := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", sourceFailure("parsing document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "del":
				delDepth++
			case "t":
				inText = true
			case "tab":
				if delDepth == 0 {
					sb.WriteByte('\t')
				}
			case "br", "cr":
				if delDepth == 0 {
					sb.WriteByte('\n')
				}
			case "noBreakHyphen":
				if delDepth == 0 {
					sb.WriteByte('-')
				}
			case "tbl":
				insideTbl = true
				cellIdx = 0
				newline()
			case "tr":
				cellIdx = 0
			case "tc":
				if insideTbl && delDepth == 0 {
					if cellIdx > 0 {
						sb.WriteByte('\t')
					}
					cellIdx++
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				// Paragraphs inside table cells stay on the row line.
				if delDepth == 0 && !insideTbl {
					sb.WriteByte('\n')
				}
			case "tr", "tbl":
				if delDepth == 0 {
					sb.WriteByte('\n')
				}
				if t.Name.Local == "tbl" {
					insideTbl = false
				}
			case "del":
				if delDepth > 0 {
					delDepth--
				}
			}

		case xml.CharData:
			if delDepth == 0 && inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
