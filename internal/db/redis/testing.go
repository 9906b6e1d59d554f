package redis

import "github.com/redis/rueidis"

// NewStoreForTest creates a text-search capable Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c, textSearch: true}
}

// NewTagOnlyStoreForTest creates a Store without text search, as on Valkey (test-only).
func NewTagOnlyStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}
