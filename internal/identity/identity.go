// Package identity issues collection-unique string identifiers.
package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a new opaque identifier: unix milliseconds plus a random
// suffix, so records created within the same millisecond stay distinct.
func NewID() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
}
