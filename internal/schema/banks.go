// Package schema describes the registered bank export layouts and the static
// per-bank policy tables.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Bank identifies a source institution whose export format is known.
type Bank string

const (
	BankHDFC       Bank = "hdfc"
	BankICICI      Bank = "icici"
	BankIndus      Bank = "indus"
	BankKarurVysya Bank = "karur_vysya"
)

// Banks lists every accepted bank identifier.
var Banks = []Bank{BankHDFC, BankICICI, BankIndus, BankKarurVysya}

var ErrUnknownBank = errors.New("unknown bank")

// ParseBank validates a bank identifier received from an upload.
func ParseBank(s string) (Bank, error) {
	b := Bank(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Banks {
		if b == known {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBank, s)
}

func (b Bank) String() string { return string(b) }

// Category is the transaction category of a file or line.
type Category string

const (
	CategoryBooking Category = "booking"
	CategoryRefund  Category = "refund"
	// CategoryBoth marks a registry entry that applies regardless of category.
	CategoryBoth Category = "both"
)

// Valid reports whether c is one of booking, refund or both.
func (c Category) Valid() bool {
	switch c {
	case CategoryBooking, CategoryRefund, CategoryBoth:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// Banks whose exports carry their own merchant id.
var ownMIDBanks = map[Bank]bool{
	BankHDFC:  true,
	BankICICI: true,
	BankIndus: true,
}

// Fixed numeric codes used as MID for banks that do not supply one.
var bankCodes = map[Bank]int{
	BankHDFC:       101,
	BankICICI:      102,
	BankKarurVysya: 40,
}

// UsesOwnMID reports whether the MID column of b's exports is taken as is.
func UsesOwnMID(b Bank) bool {
	return ownMIDBanks[b]
}

// BankCode returns the fixed numeric code of b.
func BankCode(b Bank) (int, bool) {
	code, ok := bankCodes[b]
	return code, ok
}
