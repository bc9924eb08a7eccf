package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tabserv/internal/apperr"
	"tabserv/internal/middleware"
	"tabserv/internal/models"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] [ERROR] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureDBConnection(ctx context.Context, store pinger) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return store.Ping(checkCtx)
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	level := "WARN"
	if status >= http.StatusInternalServerError {
		level = "ERROR"
	}
	log.Printf("[%s] [%s] returning error %d: %s", route, level, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindInvalidArgument, apperr.KindPreconditionFailed:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError renders an error returned by the order or tab service.
func respondServiceError(c *gin.Context, route string, err error) {
	respondWithError(c, statusFor(apperr.KindOf(err)), route, apperr.PublicMessage(err))
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "min", "gte":
				details = append(details, fmt.Sprintf("%s must be at least %s", field, fieldError.Param()))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// requirePrincipal fetches the principal set by the auth middleware and
// aborts with 401 when it is missing.
func requirePrincipal(c *gin.Context, route string) (models.Principal, bool) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
		return models.Principal{}, false
	}
	return principal, true
}
