package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// recordNamespace seeds the deterministic ids of settlement transactions.
var recordNamespace = uuid.MustParse("7f3f6a52-2b7c-4c1e-9f0c-5d1a2a6f8e31")

// SettlementTransaction is one normalized settlement, booking or refund line.
// Every field not sourced from the export is stored as NULL.
type SettlementTransaction struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	TransactionType      string              `gorm:"index;not null" json:"Transaction_type"`
	MerchantName         *string             `json:"Merchant_Name"`
	MID                  *string             `gorm:"column:mid;index" json:"MID"`
	TransactionID        *string             `gorm:"index" json:"Transaction_Id"`
	OrderID              *string             `gorm:"index" json:"Order_Id"`
	TransactionDate      *time.Time          `json:"Transaction_Date"`
	SettlementDate       *time.Time          `json:"Settlement_Date"`
	RefundRequestDate    *time.Time          `json:"Refund_Request_Date"`
	GrossAmount          decimal.NullDecimal `gorm:"type:numeric(18,2)" json:"Gross_Amount"`
	AggregatorCom        decimal.NullDecimal `gorm:"type:numeric(18,2)" json:"Aggregator_Com"`
	AcquirerComm         decimal.NullDecimal `gorm:"type:numeric(18,2)" json:"Acquirer_Comm"`
	PayableMerchant      decimal.NullDecimal `gorm:"type:numeric(18,2)" json:"Payable_Merchant"`
	PayoutFromNodal      decimal.NullDecimal `gorm:"type:numeric(18,2)" json:"Payout_from_Nodal"`
	BankNameReceiveFunds *string             `json:"BankName_Receive_Funds"`
	NodalAccountNo       *string             `json:"Nodal_Account_No"`
	AggregatorName       *string             `json:"Aggregator_Name"`
	AcquirerName         *string             `json:"Acquirer_Name"`
	RefundFlag           *string             `json:"Refund_Flag"`
	PaymentsType         *string             `json:"Payments_Type"`
	MOPType              *string             `gorm:"column:mop_type" json:"MOP_Type"`
	CreditDebitDate      *time.Time          `json:"Credit_Debit_Date"`
	BankName             string              `gorm:"index;not null" json:"Bank_Name"`
	RefundOrderID        *string             `json:"Refund_Order_Id"`
	AcqID                *string             `json:"Acq_Id"`
	ApproveCode          *string             `json:"Approve_code"`
	ArnNo                *string             `json:"Arn_No"`
	CardNo               *string             `json:"Card_No"`
	Tid                  *string             `json:"Tid"`
	Remarks              *string             `json:"Remarks"`
	BankRefID            *string             `gorm:"index" json:"Bank_Ref_id"`
	FileUploadDate       *time.Time          `json:"File_upload_Date"`
	UserName             *string             `json:"User_name"`
	ReconStatus          *string             `gorm:"index" json:"Recon_Status"`
	MprSummaryTrans      *string             `json:"Mpr_Summary_Trans"`
	MerchantCode         *string             `json:"Merchant_code"`
	RecFmt               *string             `json:"Rec_Fmt"`
	CardType             *string             `json:"Card_type"`
	IntlAmount           decimal.NullDecimal `gorm:"type:numeric(18,2)" json:"Intl_Amount"`
	DomesticAmount       decimal.NullDecimal `gorm:"type:numeric(18,2)" json:"Domestic_Amount"`
	UDF1                 *string             `gorm:"column:udf1" json:"UDF1"`
	UDF2                 *string             `gorm:"column:udf2" json:"UDF2"`
	UDF3                 *string             `gorm:"column:udf3" json:"UDF3"`
	UDF4                 *string             `gorm:"column:udf4" json:"UDF4"`
	UDF5                 *string             `gorm:"column:udf5" json:"UDF5"`
	UDF6                 *string             `gorm:"column:udf6" json:"UDF6"`
	GSTNumber            *string             `gorm:"column:gst_number" json:"GST_Number"`
	CreditDebitAmount    *string             `json:"Credit_Debit_Amount"`

	CreatedAt time.Time `json:"created_at"`
}

// AssignID derives the record id from the fields that identify a settlement
// line, so re-ingesting the same line yields the same id.
func (t *SettlementTransaction) AssignID() {
	parts := []string{
		t.BankName,
		t.TransactionType,
		deref(t.OrderID),
		deref(t.TransactionID),
		deref(t.RefundOrderID),
		deref(t.BankRefID),
		deref(t.ArnNo),
		nullDecimalString(t.PayableMerchant),
		timeString(t.TransactionDate),
		timeString(t.SettlementDate),
	}
	t.ID = uuid.NewSHA1(recordNamespace, []byte(strings.Join(parts, "|")))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullDecimalString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func timeString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
