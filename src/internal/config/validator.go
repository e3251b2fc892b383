package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	if err := validate.Struct(&c.Listen); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "listen", "")...)
	}
	if err := validate.Struct(&c.Storage); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "storage", "")...)
	}

	if len(c.Resources) == 0 {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "resources",
			Message:   "configuration must contain at least one resource",
		})
	} else {
		validationErrors = append(validationErrors, c.validateResources()...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

func (c *Config) validateResources() ValidationErrors {
	var validationErrors ValidationErrors

	seenRoutes := make(map[string]bool)
	seenFiles := make(map[string]bool)

	for i, res := range c.Resources {
		if res == nil {
			validationErrors = append(validationErrors, ValidationError{
				FieldPath: fmt.Sprintf("resources.%d", i),
				Message:   "resource must not be empty",
			})
			continue
		}

		itemName := res.Route
		if itemName == "" {
			itemName = fmt.Sprintf("resources[%d]", i)
		}

		if err := validate.Struct(res); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("resources.%d", i), itemName)...)
		}

		if seenRoutes[res.Route] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "route",
				Message:   fmt.Sprintf("duplicate route: %s", res.Route),
			})
		}
		seenRoutes[res.Route] = true

		if seenFiles[res.File] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "file",
				Message:   fmt.Sprintf("duplicate file: %s", res.File),
			})
		}
		seenFiles[res.File] = true
	}

	return validationErrors
}

func convertValidatorErrors(err error, fieldPrefix string, itemName string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			if e.Field() != "" {
				if fieldPrefix != "" {
					fieldPath = fieldPrefix + "." + e.Field()
				} else {
					fieldPath = e.Field()
				}
			}

			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	}

	return validationErrors
}
