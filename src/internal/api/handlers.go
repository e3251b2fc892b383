package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/chuckhq/chuck-hq/src/internal/service"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var (
	errNotContainer = errors.New("body is not a JSON object or array")
	errTrailingData = errors.New("unexpected data after JSON body")
	errTooLarge     = errors.New("body too large")
)

// Handler serves the resource endpoints.
type Handler struct {
	collections *service.CollectionService
	singletons  *service.SingletonService
}

// NewHandler creates a new API handler.
func NewHandler(collections *service.CollectionService, singletons *service.SingletonService) *Handler {
	return &Handler{
		collections: collections,
		singletons:  singletons,
	}
}

// writeJSON writes a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(data)
}

// writeOK writes a 200 OK response with data.
func writeOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, data)
}

// writeCreated writes a 201 Created response with data.
func writeCreated(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusCreated, data)
}

// writeNoContent writes a 204 No Content response.
func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// decodeBody reads a JSON object or array from the request body. Bodies not
// sent as application/json are ignored and, like an empty body, decode as an
// empty object. Top-level scalars and null are rejected.
func decodeBody(w http.ResponseWriter, r *http.Request) (any, error) {
	if !isJSON(r) {
		return map[string]any{}, nil
	}

	content, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errTooLarge
		}
		return nil, err
	}

	content = bytes.TrimSpace(content)
	if len(content) == 0 {
		return map[string]any{}, nil
	}
	if content[0] != '{' && content[0] != '[' {
		return nil, errNotContainer
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return v, nil
}

// isJSON reports whether the request declares a JSON body.
func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// writeDecodeError answers a request whose body could not be used.
func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errTooLarge) {
		WritePayloadTooLarge(w)
		return
	}
	WriteInvalidJSON(w)
}
