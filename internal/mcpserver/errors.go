// Package mcpserver exposes a hybrid.Engine over the Model Context
// Protocol: add/delete documents and the five search tools.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumensearch/hybrid"
)

// Standard JSON-RPC error codes, plus a small domain-specific range.
const (
	ErrCodeInvalidParams  = -32602
	ErrCodeMethodNotFound = -32601
	ErrCodeInternalError  = -32603

	ErrCodeDuplicateID = -32001
	ErrCodeNotFound    = -32002
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
}

// MapError converts a hybrid package error into an MCPError.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, hybrid.ErrDuplicateID):
		return &MCPError{Code: ErrCodeDuplicateID, Message: "document id already exists"}
	case errors.Is(err, hybrid.ErrNotFound):
		return &MCPError{Code: ErrCodeNotFound, Message: "document not found"}
	case errors.Is(err, hybrid.ErrEmptyQuery):
		return &MCPError{Code: ErrCodeInvalidParams, Message: "query must not be empty"}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeInternalError, Message: "request canceled"}
	default:
		var vecErr *hybrid.VectorError
		if errors.As(err, &vecErr) {
			return &MCPError{Code: ErrCodeInvalidParams, Message: vecErr.Error()}
		}
		return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
	}
}

// NewInvalidParamsError builds an invalid-params MCPError with msg.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError builds a method-not-found MCPError for name.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("tool %q not found", name)}
}
