package domain

import "strings"

// DefaultKeyPrefix namespaces all keys written by the service.
const DefaultKeyPrefix = "lexlsh:"

// Keyspace derives store keys and index names from a configurable prefix.
type Keyspace struct {
	Prefix string
}

// NewKeyspace returns a Keyspace, falling back to DefaultKeyPrefix for an empty prefix.
func NewKeyspace(prefix string) Keyspace {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return Keyspace{Prefix: prefix}
}

// DocPrefix is the key prefix covered by the fingerprint index.
func (k Keyspace) DocPrefix() string { return k.Prefix + "doc:" }

// DocKey returns the hash key of a document.
func (k Keyspace) DocKey(id string) string { return k.DocPrefix() + id }

// MetaKey returns the hash recording how the index was built. It sits outside DocPrefix.
func (k Keyspace) MetaKey() string { return k.Prefix + "meta" }

// IndexName returns the fingerprint index name.
func (k Keyspace) IndexName() string { return k.Prefix + "idx" }

// IDFromKey strips the document prefix from a hash key.
func (k Keyspace) IDFromKey(key string) string {
	return strings.TrimPrefix(key, k.DocPrefix())
}
