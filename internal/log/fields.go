package log

// Standard field names for structured logging.
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldError     = "error"
	FieldCount     = "count"
	FieldDuration  = "duration"

	FieldTransactionID = "transaction_id"
	FieldRuleID        = "rule_id"
	FieldCategory      = "category"
	FieldMonth         = "month"
	FieldMode          = "mode"
	FieldPath          = "path"
)

// Component names used across the application.
const (
	ComponentApp     = "bilancio"
	ComponentService = "budget_service"
	ComponentStorage = "storage"
	ComponentWorker  = "recurring_worker"
	ComponentAMQP    = "amqp"
)

// Operation names for common actions.
const (
	OpMaterialize = "materialize"
	OpSimulate    = "simulate"
	OpImport      = "import"
	OpExport      = "export"
	OpBalances    = "balances"
)
