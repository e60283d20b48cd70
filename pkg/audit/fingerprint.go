package audit

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/xxh3"
)

// Fingerprint returns the xxh3 hash of data's JSON form as 16 hex digits,
// or "" when data is nil or cannot be marshaled. Maps marshal with sorted
// keys, so equal records give equal fingerprints.
func Fingerprint(data any) string {
	if data == nil {
		return ""
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxh3.Hash(payload))
}
