package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// SendDigest builds the current review digest and delivers it through every
// adapter. Empty digests are suppressed. A failing adapter does not stop
// delivery to the others; all failures are reported together.
func SendDigest(ctx context.Context, db *gorm.DB, adapters []Adapter, now time.Time) (*Digest, error) {
	digest, err := BuildDigest(db, now)
	if err != nil {
		return nil, err
	}
	if digest.Empty() {
		return digest, nil
	}

	msg := FormatDigest(digest)
	var failures []string
	for _, a := range adapters {
		if err := a.Send(ctx, msg); err != nil {
			failures = append(failures, err.Error())
		}
	}
	if len(failures) > 0 {
		return digest, fmt.Errorf("notify: deliver digest: %s", strings.Join(failures, "; "))
	}
	return digest, nil
}
