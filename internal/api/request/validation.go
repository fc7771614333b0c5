package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var repoRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

func init() {
	validate.RegisterValidation("repo", func(fl validator.FieldLevel) bool {
		return repoRegex.MatchString(fl.Field().String())
	})
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

// DecodeOptional is Decode for endpoints whose body may be empty.
func DecodeOptional(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return validate.Struct(v)
	}
	return Decode(r, v)
}
