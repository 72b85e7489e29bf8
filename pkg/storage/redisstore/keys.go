package redisstore

import "fmt"

// Logical key layout. Aggregate keys are appended-to or overwritten
// whole by store-side atomic primitives, never read-modify-written by
// client code.
const (
	keyEventQueue   = "events:queue"
	keyEventCounts  = "events:counts"
	keyUserActivity = "users:activity"
	keyKnownUsers   = "users:known"
)

func profileKey(userID int64) string {
	return fmt.Sprintf("users:profile:%d", userID)
}

func cacheKey(userID int64) string {
	return fmt.Sprintf("users:cache:%d", userID)
}
