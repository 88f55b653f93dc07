package server

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validationError converts the first validator failure into an ErrValidation.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return &ErrValidation{Field: first.Field(), Message: "failed on " + first.Tag()}
	}
	return &ErrValidation{Field: "request", Message: err.Error()}
}

// CollectCompanyRequest asks for a synchronous company aggregation.
type CollectCompanyRequest struct {
	CompanyName string `json:"company_name" validate:"required_without=Domain,omitempty,min=1,max=200"`
	Domain      string `json:"domain" validate:"required_without=CompanyName,omitempty,fqdn"`
	UseCache    *bool  `json:"use_cache"`
}

// Validate checks the request fields.
func (r *CollectCompanyRequest) Validate() error {
	return validationError(validate.Struct(r))
}

// CollectContactsRequest asks for a synchronous contact collection.
type CollectContactsRequest struct {
	CompanyName string `json:"company_name" validate:"required_without=Domain,omitempty,min=1,max=200"`
	Domain      string `json:"domain" validate:"required_without=CompanyName,omitempty,fqdn"`
	Limit       int    `json:"limit" validate:"omitempty,min=1,max=50"`
	UseCache    *bool  `json:"use_cache"`
}

// Validate checks the request fields.
func (r *CollectContactsRequest) Validate() error {
	return validationError(validate.Struct(r))
}

// CreateCompanyRequest registers a company for tracking.
type CreateCompanyRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Domain   string `json:"domain" validate:"omitempty,fqdn"`
	Industry string `json:"industry" validate:"omitempty,max=100"`
}

// Validate checks the request fields.
func (r *CreateCompanyRequest) Validate() error {
	return validationError(validate.Struct(r))
}

// BuildProfileRequest tunes a profile build.
type BuildProfileRequest struct {
	IncludeContacts *bool `json:"include_contacts"`
	UseCache        *bool `json:"use_cache"`
}

// OutreachRequest asks for generated outreach content for one contact.
type OutreachRequest struct {
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	Send         bool   `json:"send"`
}

// Validate checks the request fields.
func (r *OutreachRequest) Validate() error {
	return validationError(validate.Struct(r))
}

// boolOrDefault resolves an optional boolean flag.
func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
