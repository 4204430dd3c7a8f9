package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmountCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"Whole units", "100", 10000, false},
		{"Two decimals", "99.99", 9999, false},
		{"One decimal", "0.5", 50, false},
		{"Smallest amount", "0.01", 1, false},
		{"Zero refused", "0", 0, true},
		{"Negative refused", "-5", 0, true},
		{"Sub-cent precision refused", "1.005", 0, true},
		{"Not a number", "abc", 0, true},
		{"Empty string", "", 0, true},
		{"Above cap", "1000000001", 0, true},
		{"At cap", "1000000000", 100_000_000_000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmountCents(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "123.45", FormatCents(12345))
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "0.01", FormatCents(1))
	assert.Equal(t, "100.00", FormatCents(10000))
	assert.Equal(t, "-42.50", FormatCents(-4250))
}

func TestTransactionTerminal(t *testing.T) {
	assert.False(t, (&Transaction{Status: StatusPending}).Terminal())
	assert.True(t, (&Transaction{Status: StatusCompleted}).Terminal())
	assert.True(t, (&Transaction{Status: StatusRejected}).Terminal())
	assert.True(t, (&Transaction{Status: StatusFailed}).Terminal())
}

func TestValidType(t *testing.T) {
	assert.True(t, ValidType(TypeDeposit))
	assert.True(t, ValidType(TypeWithdrawal))
	assert.False(t, ValidType("transfer"))
	assert.False(t, ValidType(""))
}
