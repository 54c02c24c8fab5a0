package redis

import "github.com/MrSnakeDoc/pathways/internal/store"

const (
	// DefaultPrefix namespaces every key written by the store.
	DefaultPrefix = "pathways:"

	// Records and member sets live under different segments so no record
	// key can ever name a member set.
	recordSegment  = "rec:"
	membersSegment = "index:"
)

// RecordKey returns the key holding one record: <prefix>rec:<collection>:<key>.
func RecordKey(prefix string, c store.Collection, key string) string {
	return prefix + recordSegment + string(c) + ":" + key
}

// MembersKey returns the set listing every key of a collection:
// <prefix>index:<collection>.
func MembersKey(prefix string, c store.Collection) string {
	return prefix + membersSegment + string(c)
}
