// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package sitebuilder

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"brixi/internal/prompt"
)

// Request is the form submitted by the client.
type Request struct {
	Prompt      string `json:"prompt" validate:"required,min=10,max=200,prompt_text"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
	BrandName   string `json:"brandName" validate:"required,min=5,brand_name"`
	Color       string `json:"color" validate:"required,color_value"`
	Address     string `json:"address" validate:"required,min=10,address"`
	SiteName    string `json:"siteName" validate:"required,max=63,subdomain"`
}

const siteNameRules = "required,max=63,subdomain"

var (
	promptRe    = regexp.MustCompile(`^[\p{L}\p{N}\s,]+$`)
	phoneRe     = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	brandRe     = regexp.MustCompile(`^[\p{L}\p{N}\s]+$`)
	colorRe     = regexp.MustCompile(`^([a-zA-Z]+|#[0-9a-fA-F]{3,6}|(?:\d{1,3},\s*){2}\d{1,3})$`)
	addressRe   = regexp.MustCompile(`^[\p{L}\p{N}\s,.'-]+$`)
	subdomainRe = regexp.MustCompile(`^[a-z0-9]+$`)
)

// messages maps "<field>.<tag>" to the text shown to the user.
var messages = map[string]string{
	"prompt.min":           "prompt must be at least 10 characters long",
	"prompt.max":           "prompt cannot be longer than 200 characters",
	"prompt.prompt_text":   "prompt must not contain special characters; only letters, numbers, spaces, and commas are allowed",
	"phoneNumber.phone":    "Phone number must be a valid international phone number",
	"brandName.min":        "Brand or Name must be at least 5 characters long",
	"brandName.brand_name": "Brand or Name must not contain special characters or symbols",
	"color.color_value":    "color must be a valid color name, hex (#fff or #ffffff), or comma-separated RGB (e.g., 255, 212, 200)",
	"address.min":          "Address must be at least 10 characters long",
	"address.address":      "Address contains invalid characters",
	"siteName.max":         "Site name cannot be longer than 63 characters",
	"siteName.subdomain":   "Site name must be a valid subdomain (lowercase letters and numbers only, no hyphens or special characters)",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON names so messages match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, re := range map[string]*regexp.Regexp{
		"prompt_text": promptRe,
		"phone":       phoneRe,
		"brand_name":  brandRe,
		"color_value": colorRe,
		"address":     addressRe,
		"subdomain":   subdomainRe,
	} {
		v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
	}
	return v
}

// ValidationError lists every rule the request violated, in field order and
// then rule order within a field.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Normalize trims surrounding whitespace from every field.
func (r *Request) Normalize() {
	r.Prompt = strings.TrimSpace(r.Prompt)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.BrandName = strings.TrimSpace(r.BrandName)
	r.Color = strings.TrimSpace(r.Color)
	r.Address = strings.TrimSpace(r.Address)
	r.SiteName = strings.TrimSpace(r.SiteName)
}

// Validate checks the request and returns a *ValidationError describing all
// invalid fields, or nil.
func (r *Request) Validate() error {
	return toValidationError(validate.Struct(r))
}

// ValidateSiteName applies the siteName rules on their own.
func ValidateSiteName(name string) error {
	err := validate.Var(name, siteNameRules)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &ValidationError{Messages: brokenRules("siteName", name, siteNameRules, verrs[0].Tag())}
	}
	return err
}

// Fields returns the values used to compose the AI prompt.
func (r *Request) Fields() prompt.Fields {
	return prompt.Fields{
		Prompt:      r.Prompt,
		PhoneNumber: r.PhoneNumber,
		BrandName:   r.BrandName,
		Color:       r.Color,
		Address:     r.Address,
	}
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Messages: []string{err.Error()}}
	}

	reqType := reflect.TypeOf(Request{})
	out := &ValidationError{Messages: make([]string, 0, len(verrs))}
	for _, fe := range verrs {
		rules := ""
		if sf, ok := reqType.FieldByName(fe.StructField()); ok {
			rules = sf.Tag.Get("validate")
		}
		out.Messages = append(out.Messages, brokenRules(fe.Field(), fe.Value(), rules, fe.Tag())...)
	}
	return out
}

// brokenRules returns the message for the failed rule plus one for every
// later rule in rules that value also breaks. validator stops a field at its
// first failure. An empty value only reports that it is required.
func brokenRules(field string, value any, rules, failed string) []string {
	msgs := []string{fieldMessage(field, failed)}
	if failed == "required" {
		return msgs
	}

	list := strings.Split(rules, ",")
	for i, rule := range list {
		if ruleName(rule) != failed {
			continue
		}
		for _, later := range list[i+1:] {
			if validate.Var(value, later) != nil {
				msgs = append(msgs, fieldMessage(field, ruleName(later)))
			}
		}
		break
	}
	return msgs
}

func ruleName(rule string) string {
	name, _, _ := strings.Cut(rule, "=")
	return name
}

func fieldMessage(field, tag string) string {
	if tag == "required" {
		return field + " should not be empty"
	}
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return field + " is invalid"
}
