package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	UserID string          `validate:"required"`
	Amount decimal.Decimal `validate:"gt=0"`
}

func TestStructAcceptsValidRequest(t *testing.T) {
	req := sampleRequest{
		UserID: "user-1",
		Amount: decimal.RequireFromString("10.50"),
	}
	assert.NoError(t, Struct(req))
}

func TestStructRejectsZeroDecimal(t *testing.T) {
	req := sampleRequest{
		UserID: "user-1",
		Amount: decimal.Zero,
	}
	err := Struct(req)
	assert.Error(t, err)

	msgs := FormatValidationError(err)
	assert.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Amount must be greater than 0")
}

func TestStructRejectsNegativeDecimal(t *testing.T) {
	req := sampleRequest{
		UserID: "user-1",
		Amount: decimal.RequireFromString("-5"),
	}
	assert.Error(t, Struct(req))
}

func TestFormatValidationErrorRequired(t *testing.T) {
	req := sampleRequest{Amount: decimal.NewFromInt(1)}
	err := Struct(req)
	assert.Error(t, err)

	msgs := FormatValidationError(err)
	assert.Contains(t, msgs, "UserID is required")
}
