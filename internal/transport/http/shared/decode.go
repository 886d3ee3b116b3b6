package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"hrms/internal/transport/http/api"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// DecodeAndValidate reads a JSON payload into dst and runs its `validate`
// struct tags. On failure it writes the 400 response itself and reports
// false, so handlers can simply return.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			issues := make([]FieldIssue, 0, len(verrs))
			for _, fe := range verrs {
				issues = append(issues, FieldIssue{
					Field:  strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
					Reason: reasonFor(fe),
				})
			}
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
				map[string]any{"fields": issues}, requestID)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return false
	}
	return true
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
