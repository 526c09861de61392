package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers lspframe-specific validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("mediatype", validateMediaType); err != nil {
		return fmt.Errorf("failed to register mediatype validator: %w", err)
	}
	return nil
}

// validateMediaType does a cheap sanity check on a Content-Type value:
// it must contain a "/" (type/subtype), matching the shape of the
// default "application/vscode-jsonrpc; charset=utf-8".
func validateMediaType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	mediatype, _, _ := strings.Cut(value, ";")
	return strings.Contains(mediatype, "/")
}

// Validate validates the Config using struct tags and custom cross-field
// rules. Returns an error if validation fails, with actionable messages.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if err := c.validateHeaderContentType(); err != nil {
		return err
	}

	return nil
}

// validateHeaderContentType re-runs the mediatype check on
// Header.DefaultContentType directly, since it isn't tagged on the
// struct (it's built from SetDefaults, which runs before Validate).
func (c *Config) validateHeaderContentType() error {
	if c.Header.DefaultContentType == "" {
		return nil
	}
	mediatype, _, _ := strings.Cut(c.Header.DefaultContentType, ";")
	if !strings.Contains(mediatype, "/") {
		return fmt.Errorf("header.default_content_type: %q is not a valid media type", c.Header.DefaultContentType)
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to
// user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

// formatSingleValidationError creates a user-friendly message for a
// single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "mediatype":
		return fmt.Sprintf("%s must be a valid media type (type/subtype)", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
