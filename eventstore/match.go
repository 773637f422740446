package eventstore

import (
	"slices"

	jsoniter "github.com/json-iterator/go"
)

// Matches reports whether the event belongs to the "dynamic event stream" described by the filter.
//
// An empty filter matches every event after the sequence number bound. Predicates compare top-level payload fields that hold strings;
// a payload that can't be decoded never matches a filter item that has predicates.
func (f Filter) Matches(event StorableEvent) bool {
	if f.sequenceNumberHigherThan > 0 && event.SequenceNumber <= f.sequenceNumberHigherThan {
		return false
	}

	if len(f.items) == 0 {
		return true
	}

	var payload map[string]any
	decoded := false

	for _, item := range f.items {
		if len(item.eventTypes) > 0 && !slices.Contains(item.eventTypes, event.EventType) {
			continue
		}

		if len(item.predicates) == 0 {
			return true
		}

		if !decoded {
			if err := jsoniter.ConfigFastest.Unmarshal(event.PayloadJSON, &payload); err != nil {
				payload = nil
			}
			decoded = true
		}

		if payload != nil && item.matchesPredicates(payload) {
			return true
		}
	}

	return false
}

func (fi FilterItem) matchesPredicates(payload map[string]any) bool {
	for _, predicate := range fi.predicates {
		val, ok := payload[predicate.key].(string)
		hit := ok && val == predicate.val

		if hit && !fi.allPredicatesMustMatch {
			return true
		}

		if !hit && fi.allPredicatesMustMatch {
			return false
		}
	}

	return fi.allPredicatesMustMatch
}
