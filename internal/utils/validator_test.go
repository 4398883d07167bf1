// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidAddress(t *testing.T) {
	valid := []string{
		"cosmos1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lzv7xu",
		"juno1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lzv7xu",
	}
	for _, addr := range valid {
		assert.True(t, IsValidAddress(addr), addr)
	}

	invalid := []string{
		"",
		"cosmos1",
		"COSMOS1QYPQXPQ9QCRSSZG2PVXQ6RS0ZQG3YYC5LZV7XU", // uppercase
		"cosmos1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lbv7xu", // 'b' outside charset
		"1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lzv7xu",       // no hrp
		"not-an-address",
	}
	for _, addr := range invalid {
		assert.False(t, IsValidAddress(addr), addr)
	}
}

func TestValidateStructUsesAccountAddressRule(t *testing.T) {
	type payload struct {
		Address string `validate:"required,account_address"`
	}

	assert.NoError(t, ValidateStruct(payload{Address: "cosmos1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5lzv7xu"}))
	assert.Error(t, ValidateStruct(payload{Address: "garbage"}))
	assert.Error(t, ValidateStruct(payload{}))
}
