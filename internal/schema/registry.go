package schema

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrSchemaNotFound  = errors.New("no schema registered")
	ErrUnknownBankCode = errors.New("no bank code registered")
)

// MissingHeadersError reports required headers absent from a chunk.
type MissingHeadersError struct {
	Bank     Bank
	Category Category
	Missing  []string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("missing expected columns %v for bank %s, type %s", e.Missing, e.Bank, e.Category)
}

// Entry describes one registered export layout. Header keys are already
// normalized.
type Entry struct {
	Bank     Bank
	Category Category
	// RequiredHeaders must all be present for a chunk to be accepted.
	RequiredHeaders []string
	// FieldMapping renames a normalized header to a canonical field name.
	FieldMapping map[string]string
	// SignedAmounts marks exports where the sign of the payable amount tells
	// credits from debits.
	SignedAmounts bool
}

// MissingHeaders returns the required headers not in present, sorted.
func (e Entry) MissingHeaders(present map[string]struct{}) []string {
	var missing []string
	for _, h := range e.RequiredHeaders {
		if _, ok := present[h]; !ok {
			missing = append(missing, h)
		}
	}
	sort.Strings(missing)
	return missing
}

type registryKey struct {
	bank     Bank
	category Category
}

// Registry resolves (bank, category) to an Entry. It is read-only after
// construction.
type Registry struct {
	entries map[registryKey]Entry
}

// Layout is the author-facing form of an Entry. Headers are written as they
// appear in the bank's files and normalized by NewRegistry.
type Layout struct {
	Bank          Bank
	Category      Category
	Headers       []string
	Mapping       map[string]string
	SignedAmounts bool
	// CategoryHeader names an optional column that states the category per
	// line. Empty means every line takes the submission's category.
	CategoryHeader string
}

// NewRegistry builds a registry, normalizing every declared header.
func NewRegistry(layouts ...Layout) *Registry {
	r := &Registry{entries: make(map[registryKey]Entry, len(layouts))}
	for _, l := range layouts {
		e := Entry{
			Bank:            l.Bank,
			Category:        l.Category,
			RequiredHeaders: NormalizeHeaders(l.Headers),
			FieldMapping:    make(map[string]string, len(l.Mapping)+1),
			SignedAmounts:   l.SignedAmounts,
		}
		for header, field := range l.Mapping {
			e.FieldMapping[NormalizeHeader(header)] = field
		}
		if l.CategoryHeader != "" {
			e.FieldMapping[NormalizeHeader(l.CategoryHeader)] = FieldTransactionType
		}
		r.entries[registryKey{l.Bank, l.Category}] = e
	}
	return r
}

// Resolve returns the entry for (bank, category), falling back to
// (bank, both). ErrSchemaNotFound is an expected outcome for unsupported
// combinations.
func (r *Registry) Resolve(bank Bank, category Category) (Entry, error) {
	if e, ok := r.entries[registryKey{bank, category}]; ok {
		return e, nil
	}
	if e, ok := r.entries[registryKey{bank, CategoryBoth}]; ok {
		return e, nil
	}
	return Entry{}, fmt.Errorf("%w for bank %s and transaction type %s", ErrSchemaNotFound, bank, category)
}

// Keys lists the registered (bank, category) pairs as "bank/category".
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, string(k.bank)+"/"+string(k.category))
	}
	sort.Strings(keys)
	return keys
}

// DefaultRegistry returns the built-in bank layouts.
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultLayouts()...)
}

// DefaultLayouts returns a fresh copy of the built-in bank layouts. None of
// them reads a per-line category.
func DefaultLayouts() []Layout {
	return []Layout{
		Layout{
			Bank:     BankKarurVysya,
			Category: CategoryBooking,
			Headers:  []string{"TXN DATE", "IRCTC ORDER NO.", "BANK BOOKING REF.NO.", "BOOKING AMOUNT", "CREDITED ON"},
			Mapping: map[string]string{
				"IRCTC ORDER NO.":      FieldOrderID,
				"BANK BOOKING REF.NO.": FieldBankRefID,
				"BOOKING AMOUNT":       FieldPayableMerchant,
				"TXN DATE":             FieldTransactionDate,
				"CREDITED ON":          FieldSettlementDate,
			},
		},
		Layout{
			Bank:     BankKarurVysya,
			Category: CategoryRefund,
			Headers:  []string{"REFUND DATE", "IRCTC ORDER NO.", "BANK BOOKING REF.NO.", "BANK REFUND REF.NO.", "REFUND AMOUNT", "DEBITED ON"},
			Mapping: map[string]string{
				"IRCTC ORDER NO.":      FieldOrderID,
				"REFUND AMOUNT":        FieldPayableMerchant,
				"DEBITED ON":           FieldSettlementDate,
				"REFUND DATE":          FieldTransactionDate,
				"BANK BOOKING REF.NO.": FieldBankRefID,
				"BANK REFUND REF.NO.":  FieldRefundOrderID,
			},
		},
		Layout{
			Bank:     BankICICI,
			Category: CategoryBoth,
			Headers: []string{"POST DATE", "FT NO.", "SESSION ID [ASPD]", "ARN NO", "MID",
				"TRANSACTION DATE", "NET AMT", "CARD NUMBER", "CARD TYPE", "TID"},
			Mapping: map[string]string{
				"TRANSACTION DATE": FieldTransactionDate,
				"SESSION ID":       FieldOrderID,
				"FT NO.":           FieldTransactionID,
				"ARN NO":           FieldArnNo,
				"MID":              FieldMID,
				"POST DATE":        FieldSettlementDate,
				"NET AMT":          FieldPayableMerchant,
				"CARD NUMBER":      FieldCardNo,
				"CARD TYPE":        FieldCardType,
				"TID":              FieldTid,
			},
			SignedAmounts: true,
		},
	}
}
