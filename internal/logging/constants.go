package logging

// Standardized field names for structured logging.
// Skip reasons and run summaries are emitted with these keys so log lines
// from different components can be filtered the same way.
const (
	FieldFile        = "file_name"
	FieldPath        = "file_path"
	FieldBank        = "bank"
	FieldAccountType = "acc_type"
	FieldMappingType = "mapping_type"
	FieldReason      = "reason"
	FieldColumn      = "column"
	FieldRow         = "row"
	FieldValue       = "value"
	FieldTable       = "table"
	FieldRunID       = "run_id"
	FieldStatus      = "status"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldTotal       = "total"
	FieldDelimiter   = "delimiter"
	FieldComponent   = "component"
	FieldDirectory   = "directory"
)
