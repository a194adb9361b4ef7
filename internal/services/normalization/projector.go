package normalization

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"settlement-ingest-backend/internal/coerce"
	"settlement-ingest-backend/internal/models"
	"settlement-ingest-backend/internal/schema"
)

const (
	LabelCredit = "CREDIT"
	LabelDebit  = "DEBIT"
)

var ErrInvalidCategory = errors.New("unexpected transaction type")

// Projection is one canonical record plus the fields whose cells could not
// be coerced and were stored as null.
type Projection struct {
	Record          *models.SettlementTransaction
	UnparsedAmounts []string
	UnparsedDates   []string
}

// Projector builds canonical records from rows already renamed to canonical
// field names.
type Projector struct {
	dates *coerce.TimestampParser
}

func NewProjector(dates *coerce.TimestampParser) *Projector {
	if dates == nil {
		dates = coerce.NewTimestampParser(nil)
	}
	return &Projector{dates: dates}
}

// Project builds the record for one row. Per-field coercion problems never
// fail the row; only a category outside booking/refund/both does. A
// Transaction_type cell, when present, overrides category for that row.
// signed enables the CREDIT/DEBIT label derived from the payable amount.
func (p *Projector) Project(fields Row, bank schema.Bank, category schema.Category, signed bool) (Projection, error) {
	rowCategory := category
	if v := text(fields[schema.FieldTransactionType]); v != nil {
		rowCategory = schema.Category(strings.ToLower(*v))
	}
	if !rowCategory.Valid() {
		return Projection{}, fmt.Errorf("%w: %q", ErrInvalidCategory, rowCategory)
	}

	mid, err := resolveMID(fields, bank)
	if err != nil {
		return Projection{}, err
	}

	var proj Projection
	amount := func(field string) decimal.NullDecimal {
		raw, ok := fields[field]
		if !ok {
			return decimal.NullDecimal{}
		}
		d := coerce.Amount(raw)
		if !d.Valid && text(raw) != nil {
			proj.UnparsedAmounts = append(proj.UnparsedAmounts, field)
		}
		return d
	}
	date := func(field string) *time.Time {
		raw, ok := fields[field]
		if !ok {
			return nil
		}
		t := validTime(p.dates.Parse(raw))
		if t == nil && text(raw) != nil {
			proj.UnparsedDates = append(proj.UnparsedDates, field)
		}
		return t
	}
	str := func(field string) *string { return text(fields[field]) }

	rec := &models.SettlementTransaction{
		TransactionType:      string(rowCategory),
		MerchantName:         str(schema.FieldMerchantName),
		MID:                  mid,
		TransactionID:        str(schema.FieldTransactionID),
		OrderID:              str(schema.FieldOrderID),
		TransactionDate:      date(schema.FieldTransactionDate),
		SettlementDate:       date(schema.FieldSettlementDate),
		RefundRequestDate:    date(schema.FieldRefundRequestDate),
		GrossAmount:          amount(schema.FieldGrossAmount),
		AggregatorCom:        amount(schema.FieldAggregatorCom),
		AcquirerComm:         amount(schema.FieldAcquirerComm),
		PayableMerchant:      amount(schema.FieldPayableMerchant),
		PayoutFromNodal:      amount(schema.FieldPayoutFromNodal),
		BankNameReceiveFunds: str(schema.FieldBankNameReceiveFunds),
		NodalAccountNo:       str(schema.FieldNodalAccountNo),
		AggregatorName:       str(schema.FieldAggregatorName),
		AcquirerName:         str(schema.FieldAcquirerName),
		RefundFlag:           str(schema.FieldRefundFlag),
		PaymentsType:         str(schema.FieldPaymentsType),
		MOPType:              str(schema.FieldMOPType),
		CreditDebitDate:      date(schema.FieldCreditDebitDate),
		BankName:             string(bank),
		RefundOrderID:        str(schema.FieldRefundOrderID),
		AcqID:                str(schema.FieldAcqID),
		ApproveCode:          str(schema.FieldApproveCode),
		ArnNo:                str(schema.FieldArnNo),
		CardNo:               str(schema.FieldCardNo),
		Tid:                  str(schema.FieldTid),
		Remarks:              str(schema.FieldRemarks),
		BankRefID:            str(schema.FieldBankRefID),
		FileUploadDate:       date(schema.FieldFileUploadDate),
		UserName:             str(schema.FieldUserName),
		ReconStatus:          str(schema.FieldReconStatus),
		MprSummaryTrans:      str(schema.FieldMprSummaryTrans),
		MerchantCode:         str(schema.FieldMerchantCode),
		RecFmt:               str(schema.FieldRecFmt),
		CardType:             str(schema.FieldCardType),
		IntlAmount:           amount(schema.FieldIntlAmount),
		DomesticAmount:       amount(schema.FieldDomesticAmount),
		GSTNumber:            str(schema.FieldGSTNumber),
	}
	if signed {
		rec.CreditDebitAmount = creditDebitLabel(coerce.AmountOrZero(fields[schema.FieldPayableMerchant]))
	}
	rec.AssignID()

	proj.Record = rec
	return proj, nil
}

// resolveMID takes the MID column for banks that carry their own merchant
// id and the bank's fixed code otherwise.
func resolveMID(fields Row, bank schema.Bank) (*string, error) {
	if schema.UsesOwnMID(bank) {
		return text(fields[schema.FieldMID]), nil
	}
	code, ok := schema.BankCode(bank)
	if !ok {
		return nil, fmt.Errorf("%w for bank %s", schema.ErrUnknownBankCode, bank)
	}
	mid := strconv.Itoa(code)
	return &mid, nil
}

func creditDebitLabel(amount decimal.Decimal) *string {
	var label string
	switch amount.Sign() {
	case 1:
		label = LabelCredit
	case -1:
		label = LabelDebit
	default:
		return nil
	}
	return &label
}

// text trims a cell and maps blank to null.
func text(raw *string) *string {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	return &s
}

// validTime drops the zero time so it is never stored as a real date.
func validTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	return t
}
