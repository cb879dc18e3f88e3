// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/pdiddy/docgraph/internal/graph"
	"github.com/pdiddy/docgraph/pkg/types"
)

// graphRequest is the JSON body of POST /v1/graphs. Exactly one of
// Location and Text is required.
type graphRequest struct {
	ID       string `json:"id" validate:"omitempty,max=128"`
	Kind     string `json:"kind" validate:"omitempty,oneof=pdf image url docx text"`
	Location string `json:"location" validate:"omitempty,max=2048"`
	Text     string `json:"text"`
	Mode     string `json:"mode" validate:"omitempty,oneof=entity statistics"`
}

type graphResponse struct {
	Message    string        `json:"message,omitempty"`
	DocumentID string        `json:"document_id,omitempty"`
	RunID      string        `json:"run_id,omitempty"`
	Mode       string        `json:"mode,omitempty"`
	Triples    int           `json:"triples"`
	Turtle     string        `json:"turtle,omitempty"`
	Layout     *types.Layout `json:"layout,omitempty"`
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, graphResponse{Message: msg})
}

func (s *Server) createGraph(c echo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, s.cfg.MaxUploadBytes)

	var (
		doc  types.Document
		mode string
		err  error
	)
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		doc, mode, err = s.uploadedDocument(c)
	} else {
		doc, mode, err = s.requestedDocument(c)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fail(c, http.StatusRequestEntityTooLarge, "Request body too large")
		}
		return fail(c, http.StatusBadRequest, err.Error())
	}

	schemaMode := types.SchemaKind(mode)
	if schemaMode == "" {
		schemaMode = types.SchemaEntityRelation
	}

	res, err := s.pipeline.Run(req.Context(), doc, schemaMode)
	if err != nil {
		status, msg := errorStatus(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("Failed to build graph", "doc", doc.ID, "err", err)
		}
		return fail(c, status, msg)
	}

	var ttl strings.Builder
	if err := graph.WriteTurtle(&ttl, res.Graph, s.cfg.Prefix, s.cfg.Namespace); err != nil {
		s.logger.Error("Failed to write turtle", "doc", doc.ID, "err", err)
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	return c.JSON(http.StatusOK, graphResponse{
		DocumentID: doc.ID,
		RunID:      res.RunID,
		Mode:       string(schemaMode),
		Triples:    res.Graph.Len(),
		Turtle:     ttl.String(),
		Layout:     &res.Layout,
	})
}

// requestedDocument builds a document from a JSON body. Locations must be
// http(s) or s3:// so clients cannot read the server's file system.
func (s *Server) requestedDocument(c echo.Context) (types.Document, string, error) {
	var body graphRequest
	if err := c.Bind(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return types.Document{}, "", err
		}
		return types.Document{}, "", errors.New("Invalid request body")
	}
	if err := c.Validate(&body); err != nil {
		return types.Document{}, "", fmt.Errorf("Invalid request body: %v", err)
	}

	hasText := body.Text != ""
	hasLocation := body.Location != ""
	if hasText == hasLocation {
		return types.Document{}, "", errors.New("exactly one of text and location is required")
	}

	doc := types.Document{ID: body.ID, Kind: types.SourceKind(body.Kind)}
	if hasText {
		doc.Payload = []byte(body.Text)
		if doc.Kind == "" {
			doc.Kind = types.SourceText
		}
	} else {
		if !remoteLocation(body.Location) {
			return types.Document{}, "", errors.New("location must be an http(s) or s3:// URL")
		}
		doc.Location = body.Location
		if doc.Kind == "" {
			kind, ok := types.KindFromLocation(body.Location)
			if !ok {
				return types.Document{}, "", errors.New("cannot infer kind from location; set kind")
			}
			doc.Kind = kind
		}
	}

	if doc.ID == "" {
		if hasLocation {
			doc.ID = types.DocumentID(body.Location)
		} else {
			id, err := gonanoid.New()
			if err != nil {
				return types.Document{}, "", fmt.Errorf("generating document id: %w", err)
			}
			doc.ID = id
		}
	}
	return doc, body.Mode, nil
}

// uploadedDocument reads the multipart "file" field. The kind comes from the
// "kind" field or the file extension.
func (s *Server) uploadedDocument(c echo.Context) (types.Document, string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return types.Document{}, "", err
		}
		return types.Document{}, "", errors.New("multipart field \"file\" is required")
	}

	mode := c.FormValue("mode")
	if mode != "" && !types.SchemaKind(mode).Valid() {
		return types.Document{}, "", fmt.Errorf("unknown mode %q", mode)
	}

	kind := types.SourceKind(c.FormValue("kind"))
	if kind == "" {
		var ok bool
		if kind, ok = types.KindFromLocation(fh.Filename); !ok {
			return types.Document{}, "", fmt.Errorf("cannot infer kind from %q; set kind", fh.Filename)
		}
	}
	if !kind.Valid() {
		return types.Document{}, "", fmt.Errorf("unknown kind %q", kind)
	}

	f, err := fh.Open()
	if err != nil {
		return types.Document{}, "", errors.New("Invalid request body")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return types.Document{}, "", errors.New("Invalid request body")
	}

	name := filepath.Base(fh.Filename)
	return types.Document{
		ID:       types.DocumentID(name),
		Kind:     kind,
		Location: name,
		Payload:  data,
	}, mode, nil
}

func remoteLocation(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "s3":
		return u.Host != ""
	}
	return false
}

// errorStatus maps pipeline errors to HTTP statuses. Retryable extraction
// failures are upstream problems (502); permanent ones and empty documents
// are unprocessable (422).
func errorStatus(err error) (int, string) {
	var f *types.ExtractionFailure
	switch {
	case errors.As(err, &f) && f.Retryable:
		return http.StatusBadGateway, f.Error()
	case errors.As(err, &f):
		return http.StatusUnprocessableEntity, f.Error()
	case errors.Is(err, types.ErrEmptyInput):
		return http.StatusUnprocessableEntity, err.Error()
	}
	return http.StatusInternalServerError, "Internal server error"
}
