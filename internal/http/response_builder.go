// Package http exposes the finance service as a JSON API.
//
// This file implements the builder used by every handler to write
// responses, so status, headers and encoding stay consistent.
package http

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
)

// ResponseBuilder provides a fluent API for building JSON and attachment responses.
type ResponseBuilder struct {
	statusCode  int
	headers     map[string]string
	body        []byte
	contentType string
	err         error
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the body. Encoding errors surface when Write is called.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		b.err = err
		return b
	}
	b.contentType = "application/json; charset=utf-8"
	b.body = buf.Bytes()
	return b
}

// Body sets raw bytes of the given content type.
func (b *ResponseBuilder) Body(contentType string, content []byte) *ResponseBuilder {
	b.contentType = contentType
	b.body = content
	return b
}

// Attachment asks clients to save the body as filename.
func (b *ResponseBuilder) Attachment(filename string) *ResponseBuilder {
	return b.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
}

// Write sends the built response. A body that failed to encode becomes a 500.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.contentType != "" {
		w.Header().Set("Content-Type", b.contentType)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorBody is the JSON shape of every error response. Field names the
// rejected input; List points at the collection to return to.
type ErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	List  string `json:"list,omitempty"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, body ErrorBody) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(body)
}

func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, ErrorBody{Error: message})
}

func NotFoundError(message, list string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, ErrorBody{Error: message, List: list})
}

func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, ErrorBody{Error: message})
}

func NoContent() *ResponseBuilder {
	return NewResponse().Status(http.StatusNoContent)
}
