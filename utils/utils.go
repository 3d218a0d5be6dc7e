package utils

import (
	"crypto/md5"
	"sort"
	"strings"

	"github.com/gofrs/uuid"
)

// GenUuidFromStrings derives a deterministic uuid from the given parts.
// Order does not matter; parts are sorted before hashing, so the same set
// always yields the same id.
func GenUuidFromStrings(parts ...string) string {
	if len(parts) == 0 {
		parts = append(parts, uuid.Nil.String())
	}

	sorted := make([]string, len(parts))
	copy(sorted, parts)
	sort.Strings(sorted)

	return uuidFromHash([]byte(strings.Join(sorted, "")))
}

func uuidFromHash(b []byte) string {
	sum := md5.Sum(b)
	// stamp version 3 and the RFC 4122 variant
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.FromBytesOrNil(sum[:]).String()
}
