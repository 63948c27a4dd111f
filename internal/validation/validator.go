// Newsrec - News Recommendation and Experimentation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/newsrec

// Package validation validates records accepted from outside the engine
// (items, interactions, users, recommendation events) using
// go-playground/validator v10.
//
// A single validator instance is shared; it caches struct metadata and is
// safe for concurrent use. Failures are returned as *RequestValidationError,
// which matches recommend.ErrInvalidInput with errors.Is.
//
// Example:
//
//	if err := validation.ValidateItem(&item); err != nil {
//	    return err // errors.Is(err, recommend.ErrInvalidInput) == true
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/newsrec/internal/recommend"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError is a single failed field.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the JSON name of the field that failed.
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string {
	return e.tag
}

// Param returns the tag parameter ("100" for "max=100").
func (e *ValidationError) Param() string {
	return e.param
}

// Value returns the rejected value.
func (e *ValidationError) Value() interface{} {
	return e.value
}

// Error returns a human-readable message.
func (e *ValidationError) Error() string {
	return e.message
}

// RequestValidationError collects every failed field of one record.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the individual field errors.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

// Error joins all field messages.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, 0, len(ve.errors))
	for i := range ve.errors {
		messages = append(messages, ve.errors[i].Error())
	}
	return strings.Join(messages, "; ")
}

// Unwrap classifies every validation failure as invalid input.
func (ve *RequestValidationError) Unwrap() error {
	return recommend.ErrInvalidInput
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report JSON names so messages match what clients send.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		validate.RegisterStructValidation(itemStructLevel, recommend.Item{})
		validate.RegisterStructValidation(preferencesStructLevel, recommend.Preferences{})
	})
	return validate
}

// itemStructLevel requires Topics ordered by descending probability.
func itemStructLevel(sl validator.StructLevel) {
	item, ok := sl.Current().Interface().(recommend.Item)
	if !ok {
		return
	}
	for i := 1; i < len(item.Topics); i++ {
		if item.Topics[i].Probability > item.Topics[i-1].Probability {
			sl.ReportError(item.Topics, "topics", "Topics", "topics_desc", "")
			return
		}
	}
}

// preferencesStructLevel rejects blank preference entries.
func preferencesStructLevel(sl validator.StructLevel) {
	p, ok := sl.Current().Interface().(recommend.Preferences)
	if !ok {
		return
	}
	check := func(values []string, field, structField string) {
		for _, v := range values {
			if strings.TrimSpace(v) == "" {
				sl.ReportError(values, field, structField, "no_blank", "")
				return
			}
		}
	}
	check(p.Categories, "categories", "Categories")
	check(p.Keywords, "keywords", "Keywords")
	check(p.Sources, "sources", "Sources")
}

// ValidateStruct validates s and returns nil or a *RequestValidationError.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{{field: "unknown", tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr),
		}
	}
	return &RequestValidationError{errors: fieldErrors}
}

// ValidateItem validates a catalog item.
func ValidateItem(item *recommend.Item) error {
	return ValidateStruct(item)
}

// ValidateInteraction validates an interaction.
func ValidateInteraction(in *recommend.Interaction) error {
	return ValidateStruct(in)
}

// ValidateUser validates a user record.
func ValidateUser(u *recommend.User) error {
	return ValidateStruct(u)
}

// ValidateEvent validates a recommendation event before it is appended.
func ValidateEvent(ev *recommend.RecommendationEvent) error {
	return ValidateStruct(ev)
}

// errorMessageTemplates maps tags to messages taking the field name.
var errorMessageTemplates = map[string]string{
	"required":    "%s is required",
	"url":         "%s must be a valid URL",
	"topics_desc": "%s must be ordered by descending probability",
	"no_blank":    "%s must not contain blank entries",
}

// errorMessageWithParam maps tags to messages taking field name and param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(template, field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
