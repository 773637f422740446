package eventstore

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Hash identifies the stream a filter selects. Filters that differ only in their
// sequence number bound share a hash, so a snapshot stays addressable while the stream grows.
func (f Filter) Hash() string {
	d := xxhash.New()

	for _, item := range f.items {
		_, _ = d.WriteString("item|")
		for _, eventType := range item.eventTypes {
			_, _ = d.WriteString("type=" + eventType + "|")
		}
		if item.allPredicatesMustMatch {
			_, _ = d.WriteString("all|")
		}
		for _, p := range item.predicates {
			_, _ = d.WriteString(strconv.Quote(p.key) + "=" + strconv.Quote(p.val) + "|")
		}
	}

	return strconv.FormatUint(d.Sum64(), 16)
}
