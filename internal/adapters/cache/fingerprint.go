// Package cache provides cache adapters for response caching.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/jbctechsolutions/parley/internal/application/ports"
)

// Fingerprint generates a deterministic cache key from a completion
// request. Message order is part of the key: the same turns in a different
// order are a different conversation.
func Fingerprint(req ports.CompletionRequest) string {
	var b strings.Builder

	b.WriteString("model:" + req.ModelID)
	for i, msg := range req.Messages {
		fmt.Fprintf(&b, "|msg[%d]:%s=%s", i, msg.Role, truncateForHash(msg.Content))
	}
	fmt.Fprintf(&b, "|max_tokens:%d", req.MaxTokens)
	fmt.Fprintf(&b, "|temperature:%g", req.Temperature)

	hash := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(hash[:])
}

// truncateForHash keeps fingerprint input bounded for very long content.
func truncateForHash(s string) string {
	if len(s) > 1000 {
		hash := sha256.Sum256([]byte(s))
		return "hash:" + hex.EncodeToString(hash[:16])
	}
	return s
}
