// Package mcp implements the Model Context Protocol transport for the
// memory store and retrieval engine: one JSON-RPC tool per external
// operation, backed by the core packages (store, ingest, retrieve,
// resolve, detect).
package mcp

import (
	"context"
	"errors"
	"fmt"

	memerrors "github.com/devmind-dev/memcore/internal/errors"
)

// Standard JSON-RPC and devmind-specific MCP error codes.
const (
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603

	// ErrCodeNotFound indicates a session/context/project lookup missed.
	ErrCodeNotFound = -32001
	// ErrCodeEmbeddingUnavailable indicates semantic_search ran without a
	// usable embedder.
	ErrCodeEmbeddingUnavailable = -32002
	// ErrCodeStorageError indicates the DAO failed.
	ErrCodeStorageError = -32003
)

// MCPError is the structured error surfaced to a tool caller.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
}

// MapError converts an internal error into an MCPError. A *MemoryError
// is mapped by Kind; anything else becomes a generic internal error.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var memErr *memerrors.MemoryError
	if errors.As(err, &memErr) {
		return mapMemoryError(memErr)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeInternalError, Message: "request canceled or timed out"}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "internal server error"}
	}
}

func mapMemoryError(e *memerrors.MemoryError) *MCPError {
	message := e.Message
	if e.Suggestion != "" {
		message = fmt.Sprintf("%s %s", message, e.Suggestion)
	}

	switch e.Kind {
	case memerrors.KindInvalidArgument:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	case memerrors.KindNotFound:
		return &MCPError{Code: ErrCodeNotFound, Message: message}
	case memerrors.KindEmbeddingUnavailable, memerrors.KindEmbeddingGenerationFailed:
		return &MCPError{Code: ErrCodeEmbeddingUnavailable, Message: message}
	case memerrors.KindStorageError:
		return &MCPError{Code: ErrCodeStorageError, Message: message}
	case memerrors.KindGitDetectionFailed, memerrors.KindProjectDetectionFailed:
		// Always swallowed upstream; reaching here is itself unexpected.
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}

// NewInvalidParamsError creates an invalid-parameters error with msg.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError creates an unknown-tool error.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("tool %q not found", name)}
}
