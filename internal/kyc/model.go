package kyc

// Status is a free-form verification label.
type Status string

const (
	// StatusPending is written by Start.
	StatusPending Status = "pending"
	// StatusApproved marks a verified user.
	StatusApproved Status = "approved"
	// StatusRejected marks a user whose verification failed.
	StatusRejected Status = "rejected"
)

const (
	namespace     = "kyc"
	userStatusTag = "UserStatus"
)
