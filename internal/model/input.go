package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Form-level rules. They gate user input before it reaches a document;
// the document itself accepts whatever it is given.

// Validate validates the personal info form.
func (p PersonalInfo) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FullName, validation.Required.Error("Full Name is required")),
		validation.Field(&p.Email,
			validation.Required.Error("Email is required"),
			is.EmailFormat.Error("Invalid email address"),
		),
	)
}

// Validate validates the education form.
func (e Education) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Institution, validation.Required.Error("Institution is required")),
		validation.Field(&e.Degree, validation.Required.Error("Degree is required")),
		validation.Field(&e.Date, validation.Required.Error("Date is required")),
	)
}

// Validate validates the experience form.
func (e Experience) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Company, validation.Required.Error("Company name is required")),
		validation.Field(&e.Position, validation.Required.Error("Position is required")),
	)
}

// Validate validates the project form. Highlights are staged separately.
func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required.Error("Project title is required")),
		validation.Field(&p.Description, validation.Required.Error("Project description is required")),
	)
}

// Validate validates the certification form.
func (c Certification) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required.Error("Certificate name is required")),
		validation.Field(&c.Issuer, validation.Required.Error("Issuing organization is required")),
		validation.Field(&c.Date, validation.Required.Error("Date is required")),
	)
}
