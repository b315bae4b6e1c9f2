package state

// Well-known memory keys, written in pipeline order.
const (
	KeyCustomerID    = "customer_id"
	KeyCustomerInput = "customer_input"
	KeyIntent        = "intent"
	KeyKYCRecord     = "kyc_record"
	KeyVerification  = "verification_result"
	KeyDecision      = "decision"
)
