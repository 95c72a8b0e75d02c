package errors

import "sort"

// FieldErrors maps a form field to the first message reported for it.
type FieldErrors map[string]string

// Keys returns the offending field names in a stable order.
func (f FieldErrors) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a new map holding dst overlaid with src. Server-discovered
// messages win over local ones for the same field.
func Merge(dst, src FieldErrors) FieldErrors {
	out := make(FieldErrors, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		if v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// NewValidation builds a validation error carrying per-field messages.
func NewValidation(fields FieldErrors) *Error {
	return New(CodeValidation, "validation failed").WithDetails(fields)
}

// Fields extracts the per-field messages from a validation error.
func Fields(err error) FieldErrors {
	typed := As(err)
	if typed == nil || typed.Code() != CodeValidation {
		return nil
	}
	switch details := typed.Details().(type) {
	case FieldErrors:
		return details
	case map[string]string:
		return FieldErrors(details)
	}
	return nil
}
