// Package response centralizes the JSON shapes the API emits. Success
// responses return the resource directly; error responses carry an error
// string plus optional field-level issues.
package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/voralis/invoxly-backend/internal/errors"
)

// ErrorResponse is the error body for every non-2xx response
type ErrorResponse struct {
	Error  string   `json:"error"`
	Issues []string `json:"issues,omitempty"`
}

// ListResponse wraps a page of results with the cursor for the next page
type ListResponse struct {
	Items      interface{} `json:"items"`
	NextCursor *string     `json:"nextCursor,omitempty"`
}

// OK returns a 200 response with the data as the body
func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// Created returns a 201 response with the data as the body
func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

// NoContent returns a 204 No Content response
func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Page returns a 200 response with items and an optional next cursor
func Page(c echo.Context, items interface{}, nextCursor *string) error {
	return c.JSON(http.StatusOK, ListResponse{Items: items, NextCursor: nextCursor})
}

// Error maps an application error to its HTTP status and error body.
// Validation errors surface their field issues.
func Error(c echo.Context, err error) error {
	var valErr *apperrors.ValidationError
	if errors.As(err, &valErr) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  valErr.Message,
			Issues: valErr.Issues,
		})
	}

	return c.JSON(getHTTPStatus(apperrors.GetErrorCode(err)), ErrorResponse{
		Error: err.Error(),
	})
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c echo.Context, message string, issues ...string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Issues: issues})
}

// NotFound returns a 404 Not Found response
func NotFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, ErrorResponse{Error: message})
}

// Unauthorized returns a 401 Unauthorized response
func Unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: message})
}

// InternalError returns a 500 Internal Server Error response
func InternalError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: message})
}

// getHTTPStatus maps error codes to HTTP status codes
func getHTTPStatus(code string) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.CodeForbidden:
		return http.StatusForbidden
	case apperrors.CodeExtractionError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
