package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainTriple = "activegraph/triple/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TripleID computes a content-addressed ID for a statement.
// The store uses it as the primary key so inserting the same statement
// twice in the same context is a no-op.
func TripleID(t Triple, context string) string {
	key := TupleKey([]Term{t.Subject, t.Predicate, t.Object}) + "\t" + context
	return hashWithDomain(DomainTriple, []byte(key))
}
