package shell

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
	"github.com/AntonStoeckl/library-coordination-go/library/core"
)

// DomainEventFrom converts a StorableEvent back to the concrete DomainEvent it was built from.
func DomainEventFrom(storableEvent eventstore.StorableEvent) (core.DomainEvent, error) {
	switch storableEvent.EventType {
	case core.BookBorrowedByUserEventType:
		return decode[core.BookBorrowedByUser](storableEvent)

	case core.BookReturnedByUserEventType:
		return decode[core.BookReturnedByUser](storableEvent)

	case core.BorrowingBookFailedEventType:
		return decode[core.BorrowingBookFailed](storableEvent)

	case core.ReturningBookFailedEventType:
		return decode[core.ReturningBookFailed](storableEvent)

	default:
		return nil, fmt.Errorf("%w: %q", ErrMappingToDomainEventUnknownEventType, storableEvent.EventType)
	}
}

// DomainEventsFrom converts a whole stream, stopping at the first failure.
func DomainEventsFrom(storableEvents eventstore.StorableEvents) (core.DomainEvents, error) {
	domainEvents := make(core.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

func decode[E core.DomainEvent](storableEvent eventstore.StorableEvent) (core.DomainEvent, error) {
	var event E
	if err := jsoniter.ConfigFastest.Unmarshal(storableEvent.PayloadJSON, &event); err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return event, nil
}
