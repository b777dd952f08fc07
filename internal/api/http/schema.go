package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/url-shortener-client/internal/entity"
	"github.com/vadimbarashkov/url-shortener-client/internal/session"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// loginRequest represents the structure for a sign-in request.
type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// registerRequest represents the structure for an account creation request.
type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150,username_chars"`
	Password string `json:"password" validate:"required,min=8"`
}

// createLinkRequest represents the structure for a request to shorten a URL.
type createLinkRequest struct {
	OriginalURL string `json:"original_url" validate:"required,url,max=2048"`
	CustomAlias string `json:"custom_alias" validate:"omitempty,min=3,max=50,alias_chars"`
}

// userResponse represents the authenticated user in responses.
type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// sessionResponse represents the session state exposed to the dashboard.
type sessionResponse struct {
	Status string        `json:"status"`
	User   *userResponse `json:"user,omitempty"`
}

func toSessionResponse(status session.Status, user *entity.UserProfile) sessionResponse {
	resp := sessionResponse{Status: string(status)}
	if user != nil {
		resp.User = &userResponse{ID: user.ID, Username: user.Username}
	}
	return resp
}

// linkResponse represents one shortened link, including its transient
// "copied" feedback flag.
type linkResponse struct {
	ID          int64     `json:"id"`
	OriginalURL string    `json:"original_url"`
	CustomAlias string    `json:"custom_alias,omitempty"`
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
	Copied      bool      `json:"copied"`
}

func toLinkResponse(link entity.Link, copied bool) linkResponse {
	return linkResponse{
		ID:          link.ID,
		OriginalURL: link.OriginalURL,
		CustomAlias: link.CustomAlias,
		ShortCode:   link.ShortCode,
		ShortURL:    link.ShortURL,
		Clicks:      link.Clicks,
		CreatedAt:   link.CreatedAt,
		Copied:      copied,
	}
}

// aliasResponse represents a suggested custom alias.
type aliasResponse struct {
	Alias string `json:"alias"`
}

// messageResponse represents a success acknowledgement without a resource.
type messageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// validationError represents an individual validation error.
type validationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// errorResponse represents a structured error response.
type errorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  []validationError `json:"errors,omitempty"`
}

// Predefined error responses for common scenarios.
var (
	emptyRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "empty request body",
	}

	invalidRequestBodyResponse = errorResponse{
		Status:  statusError,
		Message: "invalid request body",
	}

	invalidLinkIDResponse = errorResponse{
		Status:  statusError,
		Message: "invalid link id",
	}

	sessionInvalidResponse = errorResponse{
		Status:  statusError,
		Message: "session invalid, sign in again",
	}

	linkNotFoundResponse = errorResponse{
		Status:  statusError,
		Message: "link not found",
	}

	deleteConflictResponse = errorResponse{
		Status:  statusError,
		Message: "delete already in progress",
	}

	backendUnavailableResponse = errorResponse{
		Status:  statusError,
		Message: "shortener backend unavailable",
	}

	serverErrorResponse = errorResponse{
		Status:  statusError,
		Message: "server error occurred",
	}
)

// messageForTag returns a user-friendly message based on the validation tag.
func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "url":
		return "invalid url"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "username_chars":
		return "only letters, numbers, and underscores are allowed"
	case "alias_chars":
		return "only letters, numbers, underscores, and hyphens are allowed"
	default:
		return "invalid value"
	}
}

// getValidationErrors processes validation errors and returns a list of validationError.
func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

// validationErrorResponse constructs an errorResponse for validation errors.
func validationErrorResponse(err error) errorResponse {
	return errorResponse{
		Status:  statusError,
		Message: "validation error",
		Errors:  getValidationErrors(err),
	}
}

// backendValidationResponse constructs an errorResponse for input the
// backend rejected.
func backendValidationResponse(verr *entity.ValidationError) errorResponse {
	resp := errorResponse{
		Status:  statusError,
		Message: "validation error",
	}

	for _, msg := range verr.Messages {
		resp.Errors = append(resp.Errors, validationError{
			Field:   verr.Field,
			Message: msg,
		})
	}

	return resp
}
