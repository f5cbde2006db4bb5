// Package validate holds the request field checks applied before handlers
// touch the store. Message text mirrors the schema validator the API's
// clients were written against, so it is part of the wire contract.
package validate

import (
	"fmt"
	"regexp"
)

var emailRe = regexp.MustCompile(`^[\w\-.]+@([\w\-]+\.)+[\w\-]{2,4}$`)

// Required reports a missing field as `"<field>" is required`.
func Required(field, value string) error {
	if value == "" {
		return fmt.Errorf("%q is required", field)
	}
	return nil
}

// Email checks the address shape.
func Email(value string) error {
	if !emailRe.MatchString(value) {
		return fmt.Errorf("%q must be a valid email", "email")
	}
	return nil
}

// MinLen enforces a minimum string length.
func MinLen(field, value string, n int) error {
	if len(value) < n {
		return fmt.Errorf("%q length must be at least %d characters long", field, n)
	}
	return nil
}
