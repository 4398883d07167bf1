// internal/utils/validator.go
package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// Bech32-ish account address: hrp, separator, data part. The chain does the
// real checksum verification; this only rejects obvious garbage early.
var addressPattern = regexp.MustCompile(`^[a-z]{2,16}1[02-9ac-hj-np-z]{38,58}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("account_address", validateAccountAddress)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateAccountAddress(fl validator.FieldLevel) bool {
	return IsValidAddress(fl.Field().String())
}

func IsValidAddress(address string) bool {
	return addressPattern.MatchString(address)
}
