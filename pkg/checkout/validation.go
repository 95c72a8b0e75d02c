package checkout

import (
	"regexp"
	"strings"

	pkgerrors "github.com/angelmondragon/tableorder/pkg/errors"
)

// Form field keys shared by local validation and backend 422 responses.
const (
	FieldName  = "name"
	FieldPhone = "phone"
	FieldEmail = "email"
	FieldItems = "items"
	FieldForm  = "form"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)
	nonDigits     = regexp.MustCompile(`\D+`)
)

// Customer is the contact block of the payment form.
type Customer struct {
	Name  string
	Phone string
	Email string
	Note  string
}

// Normalized trims every field.
func (c Customer) Normalized() Customer {
	return Customer{
		Name:  strings.TrimSpace(c.Name),
		Phone: strings.TrimSpace(c.Phone),
		Email: strings.TrimSpace(c.Email),
		Note:  strings.TrimSpace(c.Note),
	}
}

// ValidateSubmission checks the payment form before any order is created.
// It returns nil when the submission may be sent.
func ValidateSubmission(customer Customer, lineCount int) pkgerrors.FieldErrors {
	c := customer.Normalized()
	violations := pkgerrors.FieldErrors{}

	if c.Name == "" {
		violations[FieldName] = "name is required"
	}
	switch {
	case c.Phone == "":
		violations[FieldPhone] = "phone number is required"
	case !digitsPattern.MatchString(c.Phone):
		violations[FieldPhone] = "phone number must contain digits only"
	}
	switch {
	case c.Email == "":
		violations[FieldEmail] = "email is required"
	case !emailPattern.MatchString(c.Email):
		violations[FieldEmail] = "email format is invalid"
	}
	if lineCount <= 0 {
		violations[FieldItems] = "cart is empty"
	}

	if len(violations) == 0 {
		return nil
	}
	return violations
}

// DigitsOnly strips everything but digits, mirroring the numeric phone input.
func DigitsOnly(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}
