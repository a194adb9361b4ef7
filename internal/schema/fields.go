package schema

// Canonical field names. Registry mappings rename source headers into these.
const (
	FieldTransactionType      = "Transaction_type"
	FieldMerchantName         = "Merchant_Name"
	FieldMID                  = "MID"
	FieldTransactionID        = "Transaction_Id"
	FieldOrderID              = "Order_Id"
	FieldTransactionDate      = "Transaction_Date"
	FieldSettlementDate       = "Settlement_Date"
	FieldRefundRequestDate    = "Refund_Request_Date"
	FieldGrossAmount          = "Gross_Amount"
	FieldAggregatorCom        = "Aggregator_Com"
	FieldAcquirerComm         = "Acquirer_Comm"
	FieldPayableMerchant      = "Payable_Merchant"
	FieldPayoutFromNodal      = "Payout_from_Nodal"
	FieldBankNameReceiveFunds = "BankName_Receive_Funds"
	FieldNodalAccountNo       = "Nodal_Account_No"
	FieldAggregatorName       = "Aggregator_Name"
	FieldAcquirerName         = "Acquirer_Name"
	FieldRefundFlag           = "Refund_Flag"
	FieldPaymentsType         = "Payments_Type"
	FieldMOPType              = "MOP_Type"
	FieldCreditDebitDate      = "Credit_Debit_Date"
	FieldBankName             = "Bank_Name"
	FieldRefundOrderID        = "Refund_Order_Id"
	FieldAcqID                = "Acq_Id"
	FieldApproveCode          = "Approve_code"
	FieldArnNo                = "Arn_No"
	FieldCardNo               = "Card_No"
	FieldTid                  = "Tid"
	FieldRemarks              = "Remarks"
	FieldBankRefID            = "Bank_Ref_id"
	FieldFileUploadDate       = "File_upload_Date"
	FieldUserName             = "User_name"
	FieldReconStatus          = "Recon_Status"
	FieldMprSummaryTrans      = "Mpr_Summary_Trans"
	FieldMerchantCode         = "Merchant_code"
	FieldRecFmt               = "Rec_Fmt"
	FieldCardType             = "Card_type"
	FieldIntlAmount           = "Intl_Amount"
	FieldDomesticAmount       = "Domestic_Amount"
	FieldGSTNumber            = "GST_Number"
	FieldCreditDebitAmount    = "Credit_Debit_Amount"
)

// AmountFields are coerced to decimals.
var AmountFields = []string{
	FieldGrossAmount,
	FieldAggregatorCom,
	FieldAcquirerComm,
	FieldPayableMerchant,
	FieldPayoutFromNodal,
	FieldIntlAmount,
	FieldDomesticAmount,
}

// DateFields are coerced to timestamps.
var DateFields = []string{
	FieldTransactionDate,
	FieldSettlementDate,
	FieldRefundRequestDate,
	FieldCreditDebitDate,
	FieldFileUploadDate,
}
