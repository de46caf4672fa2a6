package models

// Mapping types. A mapping type selects both the derivation rules applied to a file
// and the destination table.
const (
	MappingTypeStatement = "stm"
	MappingTypeSecurity  = "sec"
)

// MappingTypes lists the supported mapping types in processing order.
var MappingTypes = []string{MappingTypeStatement, MappingTypeSecurity}

// Common canonical columns.
const (
	ColumnSurrogateKey = "surrogate_key"
	ColumnBankName     = "bank_name"
	ColumnAccType      = "acc_type"
	ColumnFileName     = "file_name"
	ColumnProcessedAt  = "processed_at"
)

// Statement (stm) columns. ColumnAccountNumber and ColumnDebitCredit are source
// columns consumed by derivation.
const (
	ColumnAccountNumber = "acc_number"
	ColumnDebitCredit   = "dc"
	ColumnAccName       = "acc_name"
	ColumnDate          = "dt"
	ColumnYear          = "year"
	ColumnYearMonth     = "ym"
	ColumnSum           = "sum"
)

// Security (sec) columns.
const (
	ColumnSendDate        = "send_dt"
	ColumnEffectDate      = "effect_dt"
	ColumnEffectYear      = "effect_year"
	ColumnEffectYearMonth = "effect_ym"
)

// File permissions
const (
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
