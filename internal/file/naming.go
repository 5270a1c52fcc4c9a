package file

import (
	"fmt"
	"time"
)

// storageKey derives a collision-resistant storage key by prefixing the
// client's filename with the current nanosecond timestamp. Two uploads of the
// same filename within one nanosecond tick would collide; that window is
// accepted in exchange for skipping a uniqueness round trip to the store.
// The filename is not sanitized — it is used verbatim.
func storageKey(filename string) string {
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), filename)
}
