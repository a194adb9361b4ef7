package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"TXN DATE", "TXNDATE"},
		{"Txn_Date", "TXNDATE"},
		{"  txn . date  ", "TXNDATE"},
		{"SESSION ID [ASPD]", "SESSIONID"},
		{"SESSION ID[ASPD] [x]", "SESSIONID"},
		{"BANK BOOKING REF.NO.", "BANKBOOKINGREFNO"},
		{"IRCTC\tORDER\nNO.", "IRCTCORDERNO"},
		{"", ""},
		{"[only annotation]", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.raw))
		})
	}
}

func TestNormalizeHeader_Equivalence(t *testing.T) {
	variants := []string{
		"NET AMT",
		" NET AMT ",
		"NET_AMT",
		"Net.Amt",
		"NET AMT [INR]",
		"N E T  A M T",
		"net_amt[rs.]",
	}
	want := NormalizeHeader(variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, want, NormalizeHeader(v), "variant %q", v)
	}
}

func TestNormalizeHeader_Idempotent(t *testing.T) {
	for _, raw := range []string{"POST DATE", "FT NO.", "Card_Type [x]"} {
		once := NormalizeHeader(raw)
		assert.Equal(t, once, NormalizeHeader(once))
	}
}

func TestNormalizeHeaders(t *testing.T) {
	assert.Equal(t, []string{"POSTDATE", "FTNO"}, NormalizeHeaders([]string{"POST DATE", "FT NO."}))
}
