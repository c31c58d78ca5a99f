package loan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// SubmissionGuard rejects concurrent duplicates of one (account, request)
// and replays the stored outcome of a finished one.
type SubmissionGuard interface {
	// Acquire returns the stored outcome when the request already finished.
	// An in-flight duplicate gets domain.ErrSubmissionInProgress, a changed
	// body domain.ErrRequestReused.
	Acquire(ctx context.Context, accountID, requestID, fingerprint string) ([]byte, error)
	Complete(ctx context.Context, accountID, requestID, fingerprint string, outcome []byte) error
	// Release drops an in-flight marker so the caller may retry.
	Release(ctx context.Context, accountID, requestID string) error
}

// Fingerprint hashes the canonical JSON form of req.
func Fingerprint(req LoanRequest) string {
	b, _ := json.Marshal(req)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
