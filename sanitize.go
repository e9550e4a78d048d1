package databind

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicyOnce sync.Once
	ugcPolicy     *bluemonday.Policy
)

// WithUGCSanitizer installs a bluemonday user-generated-content policy so
// markup smuggled inside record values is stripped before it lands in
// output content. Callers needing a different policy can pass their own
// through WithSanitizer.
func WithUGCSanitizer() Option {
	return WithSanitizer(contentPolicy())
}

func contentPolicy() *bluemonday.Policy {
	ugcPolicyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return ugcPolicy
}
