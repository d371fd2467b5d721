package idempotency

import "time"

// Status values for ledger records. There is no terminal failure status: a
// failed attempt releases its record (or lets it expire), so the key becomes
// claimable again.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// Record is the shape persisted in the idempotency DynamoDB table.
type Record struct {
	IdempotencyKey string    `dynamodbav:"idempotency_key"` // PK
	Status         string    `dynamodbav:"status"`
	ClaimToken     string    `dynamodbav:"claim_token"`      // fences commit/release to the claim owner
	Result         string    `dynamodbav:"result,omitempty"` // present once COMPLETED
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	ExpiresAt      int64     `dynamodbav:"expires_at"` // TTL epoch seconds
}

// ClaimOutcome classifies the result of TryClaim.
type ClaimOutcome int

const (
	// Claimed: this caller owns the key and must run the work.
	Claimed ClaimOutcome = iota
	// AlreadyInProgress: another claimant holds the key and has not expired.
	AlreadyInProgress
	// AlreadyCompleted: the work already ran; Result carries the cached value.
	AlreadyCompleted
)

// Claim is the outcome of a TryClaim call.
type Claim struct {
	Outcome ClaimOutcome
	Token   string // set when Outcome == Claimed
	Result  string // set when Outcome == AlreadyCompleted
}
