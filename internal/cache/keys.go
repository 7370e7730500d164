package cache

import (
	"fmt"
	"strings"
)

// Keys are deterministic functions of query parameters so that independent
// callers agree on what to invalidate.

func AvailabilityKey(eventID string) string {
	return fmt.Sprintf("availability:%s", eventID)
}

func QueuePositionKey(eventID, userID string) string {
	return fmt.Sprintf("queuepos:%s:%s", eventID, userID)
}

func SearchKey(query string) string {
	return fmt.Sprintf("search:%s", strings.ToLower(strings.TrimSpace(query)))
}
