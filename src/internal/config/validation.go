package config

import (
	"fmt"
	"net"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	resourceNameRegexp = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
	resourceFileRegexp = regexp.MustCompile(`^[A-Za-z0-9_-][A-Za-z0-9_.-]*\.json$`)
)

// getValidationMessage returns a human-readable message for a validation error
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "resource_name":
		return "must start with a lowercase letter and consist only of [a-z0-9_-]"
	case "resource_file":
		return "must be a plain file name ending in .json"
	case "host_or_empty":
		return "must be a hostname, an IP address or empty"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// ValidationError represents a single validation error with context
type ValidationError struct {
	ItemName  string // For resources: the route (e.g., "ideas")
	FieldPath string // Dot-notation field path (e.g., "listen.port", "resources.1.file")
	Message   string // Human-readable error message
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		if err.ItemName != "" {
			sb.WriteString(fmt.Sprintf("  %d. [%s] %s: %s\n", i+1, err.ItemName, err.FieldPath, err.Message))
		} else {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
		}
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("resource_name", validateResourceName); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("resource_file", validateResourceFile); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("host_or_empty", validateHostOrEmpty); err != nil {
		panic(err)
	}

	// Report field names as they appear in the TOML file
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateResourceName(fl validator.FieldLevel) bool {
	return resourceNameRegexp.MatchString(fl.Field().String())
}

func validateResourceFile(fl validator.FieldLevel) bool {
	return resourceFileRegexp.MatchString(fl.Field().String())
}

// Custom validator: hostname, IP address or empty
func validateHostOrEmpty(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if net.ParseIP(strings.Trim(value, "[]")) != nil {
		return true
	}
	for _, label := range strings.Split(value, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		for _, r := range label {
			if !(r == '-' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
				return false
			}
		}
	}
	return true
}
