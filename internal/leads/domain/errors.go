package domain

// RuleError is a business rule refusal. Reason is stable and machine readable.
type RuleError struct {
	Reason  string
	Message string
}

func (e *RuleError) Error() string { return e.Message }

var (
	ErrLeadConverted     = &RuleError{Reason: "lead_converted", Message: "lead has already been converted"}
	ErrLeadLost          = &RuleError{Reason: "lead_lost", Message: "lead is lost and can no longer be edited"}
	ErrLeadExpired       = &RuleError{Reason: "lead_expired", Message: "lead has expired; grant an extension before editing"}
	ErrLostSameGroup     = &RuleError{Reason: "lost_same_group_reassignment", Message: "a lost lead cannot be reassigned within its own sales group"}
	ErrAlreadyExtended   = &RuleError{Reason: "extension_used", Message: "this lead has already received its one-time extension"}
	ErrExtensionClosed   = &RuleError{Reason: "extension_not_allowed", Message: "converted or lost leads cannot be extended"}
	ErrStatusNotEditable = &RuleError{Reason: "status_not_editable", Message: "converted and expired statuses are set by conversion and expiry only"}
	ErrLostReopenInGroup = &RuleError{Reason: "lost_reopen_same_group", Message: "a lost lead can only be reopened together with a move to another sales group"}
	ErrDuplicateLead     = &RuleError{Reason: "duplicate_lead", Message: "a similar lead already exists"}
	ErrLostLeadInGroup   = &RuleError{Reason: "lost_lead_same_group", Message: "a similar lead was lost by this sales group"}
	ErrCoolingPeriod     = &RuleError{Reason: "cooling_period", Message: "a matching customer was converted recently; the cooling period has not elapsed"}
	ErrCustomerExists    = &RuleError{Reason: "customer_exists", Message: "a customer already exists for this lead"}
	ErrNotConvertible    = &RuleError{Reason: "not_convertible", Message: "only open leads can be converted"}
)
