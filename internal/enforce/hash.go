package enforce

import (
	"crypto/sha256"
	"fmt"
)

// ComputeContentHash returns the SHA-256 hash of a ticket's summary and
// description. Comments and relationships are not covered, so the hash only
// changes when the template text is edited.
func ComputeContentHash(summary, description string) string {
	h := sha256.New()
	h.Write([]byte(summary))
	h.Write([]byte{0})
	h.Write([]byte(description))
	return fmt.Sprintf("sha256:%x", h.Sum(nil))
}
