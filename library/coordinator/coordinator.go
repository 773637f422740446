package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-coordination-go/eventstore"
	"github.com/AntonStoeckl/library-coordination-go/library/catalog"
	"github.com/AntonStoeckl/library-coordination-go/library/core"
	"github.com/AntonStoeckl/library-coordination-go/library/history"
	"github.com/AntonStoeckl/library-coordination-go/library/roster"
	"github.com/AntonStoeckl/library-coordination-go/library/shell"
)

const (
	commandTypeBorrowBook = "BorrowBook"
	commandTypeReturnBook = "ReturnBook"
)

// Journal is the lending journal the Coordinator appends to and History reads from.
// *memengine.EventStore satisfies it. Journals that also implement history.SnapshotStore
// get snapshot-aware History reads.
type Journal interface {
	Query(ctx context.Context, filter eventstore.Filter) (
		eventstore.StorableEvents,
		eventstore.MaxSequenceNumberUint,
		error,
	)
	Append(
		ctx context.Context,
		filter eventstore.Filter,
		expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) error
}

type historyReader interface {
	Handle(ctx context.Context, query history.Query) (history.Result, error)
}

// Coordinator is the facade over one Catalog and one Roster. It is safe for concurrent use.
type Coordinator struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	roster  *roster.Roster

	journal        Journal
	historyHandler historyReader
	correlationID  uuid.UUID
	now            func() time.Time

	logger           shell.Logger
	contextualLogger shell.ContextualLogger
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
}

// New creates a Coordinator owning the given catalog and roster.
// Callers must not use them directly afterwards.
func New(cat *catalog.Catalog, ros *roster.Roster, options ...Option) (*Coordinator, error) {
	if cat == nil || ros == nil {
		return nil, ErrNilDependency
	}

	c := &Coordinator{
		catalog:       cat,
		roster:        ros,
		correlationID: uuid.New(),
		now:           time.Now,
	}

	for _, option := range options {
		if err := option(c); err != nil {
			return nil, err
		}
	}

	if c.journal != nil {
		handler, err := history.NewQueryHandler(c.journal, c.historyOptions()...)
		if err != nil {
			return nil, err
		}

		c.historyHandler = handler
		if store, ok := c.journal.(history.SnapshotStore); ok {
			c.historyHandler = history.NewSnapshotQueryHandler(handler, store)
		}
	}

	return c, nil
}

// SearchBookByTitle delegates to Catalog.SearchByTitle.
func (c *Coordinator) SearchBookByTitle(substring string) []core.Book {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.catalog.SearchByTitle(substring)
}

// SearchBookByAuthor delegates to Catalog.SearchByAuthor.
func (c *Coordinator) SearchBookByAuthor(substring string) []core.Book {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.catalog.SearchByAuthor(substring)
}

// CheckAvailability delegates to Catalog.CheckAvailability.
func (c *Coordinator) CheckAvailability(title string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.catalog.CheckAvailability(title)
}

// BorrowBook lends the book with exactly this title to the user.
//
// It returns nil on success. Otherwise, nothing changed and the error is one of
// core.ErrUserNotFound, core.ErrBookNotFound, core.ErrBookAlreadyBorrowed,
// core.ErrEmptyUserName, core.ErrEmptyTitle, ErrJournalAppendFailed or a context error.
func (c *Coordinator) BorrowBook(ctx context.Context, userName string, title string) error {
	start := time.Now()
	ctx, span := shell.StartCommandSpan(ctx, c.tracingCollector, commandTypeBorrowBook, userName, title)
	shell.LogCommandStart(ctx, c.logger, c.contextualLogger, commandTypeBorrowBook, userName, title)

	err := c.borrow(ctx, userName, title)

	c.finishCommand(ctx, commandTypeBorrowBook, "book borrowed", err, time.Since(start), span)

	return err
}

// ReturnBook takes the book with exactly this title back from the user.
//
// Unlike Catalog.GiveBack it only acts when the user actually holds the book.
// It returns nil on success. Otherwise, nothing changed and the error is one of
// core.ErrUserNotFound, core.ErrBookNotBorrowedByUser, core.ErrEmptyUserName,
// core.ErrEmptyTitle, ErrJournalAppendFailed or a context error.
func (c *Coordinator) ReturnBook(ctx context.Context, userName string, title string) error {
	start := time.Now()
	ctx, span := shell.StartCommandSpan(ctx, c.tracingCollector, commandTypeReturnBook, userName, title)
	shell.LogCommandStart(ctx, c.logger, c.contextualLogger, commandTypeReturnBook, userName, title)

	err := c.giveBack(ctx, userName, title)

	c.finishCommand(ctx, commandTypeReturnBook, "book returned", err, time.Since(start), span)

	return err
}

// BorrowedBooks returns a copy of the books the user currently holds, in borrow order.
func (c *Coordinator) BorrowedBooks(userName string) ([]core.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	books, found := c.roster.BorrowedBooks(userName)
	if !found {
		return nil, core.ErrUserNotFound
	}

	return books, nil
}

// Books returns a copy of the catalog in catalog order.
func (c *Coordinator) Books() []core.Book {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.catalog.Books()
}

// Users returns a copy of the roster in registration order.
func (c *Coordinator) Users() []core.User {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.roster.Users()
}

// History returns the lending history of the user as recorded in the journal.
func (c *Coordinator) History(ctx context.Context, userName string) (history.Result, error) {
	if c.journal == nil {
		return history.Result{}, ErrJournalDisabled
	}

	query, err := history.BuildQuery(userName)
	if err != nil {
		return history.Result{}, err
	}

	return c.historyHandler.Handle(ctx, query)
}

func (c *Coordinator) borrow(ctx context.Context, userName string, title string) error {
	if err := validateKeys(ctx, userName, title); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if !c.roster.HasUser(userName) {
		return c.refuse(ctx, core.BuildBorrowingBookFailed(title, userName, core.ErrUserNotFound.Error(), c.now()), core.ErrUserNotFound)
	}

	book, available := c.firstAvailable(title)
	if !available {
		reason := core.ErrBookAlreadyBorrowed
		if _, exists := c.catalog.Lookup(title); !exists {
			reason = core.ErrBookNotFound
		}

		return c.refuse(ctx, core.BuildBorrowingBookFailed(title, userName, reason.Error(), c.now()), reason)
	}

	if err := c.record(ctx, commandTypeBorrowBook, core.BuildBookBorrowedByUser(title, book.Author, userName, c.now())); err != nil {
		return err
	}

	c.catalog.Borrow(title)
	c.roster.RecordBorrow(userName, core.BuildBorrowedRecord(book.Title, book.Author))
	shell.RecordBooksBorrowed(ctx, c.metricsCollector, c.borrowedCount())

	return nil
}

func (c *Coordinator) giveBack(ctx context.Context, userName string, title string) error {
	if err := validateKeys(ctx, userName, title); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if !c.roster.HasUser(userName) {
		return c.refuse(ctx, core.BuildReturningBookFailed(title, userName, core.ErrUserNotFound.Error(), c.now()), core.ErrUserNotFound)
	}

	if !c.roster.Holds(userName, title) {
		reason := core.ErrBookNotBorrowedByUser
		return c.refuse(ctx, core.BuildReturningBookFailed(title, userName, reason.Error(), c.now()), reason)
	}

	if err := c.record(ctx, commandTypeReturnBook, core.BuildBookReturnedByUser(title, userName, c.now())); err != nil {
		return err
	}

	c.roster.RecordReturn(userName, title)
	c.catalog.GiveBack(title)
	shell.RecordBooksBorrowed(ctx, c.metricsCollector, c.borrowedCount())

	return nil
}

// refuse journals a refusal and returns reason. A journal failure is logged but doesn't replace the refusal.
func (c *Coordinator) refuse(ctx context.Context, event core.DomainEvent, reason error) error {
	commandType := commandTypeBorrowBook
	if event.IsEventType() == core.ReturningBookFailedEventType {
		commandType = commandTypeReturnBook
	}

	if err := c.record(ctx, commandType, event); err != nil {
		shell.LogCommandError(ctx, c.logger, c.contextualLogger, commandType, err)
	}

	return reason
}

// firstAvailable finds the book Catalog.Borrow would take.
func (c *Coordinator) firstAvailable(title string) (core.Book, bool) {
	for _, book := range c.catalog.SearchByTitle(title) {
		if book.Title == title && book.IsAvailable {
			return book, true
		}
	}

	return core.Book{}, false
}

func (c *Coordinator) borrowedCount() int {
	count := 0
	for _, book := range c.catalog.Books() {
		if !book.IsAvailable {
			count++
		}
	}

	return count
}

func (c *Coordinator) finishCommand(
	ctx context.Context,
	commandType string,
	businessOutcome string,
	err error,
	duration time.Duration,
	span shell.SpanContext,
) {

	status := shell.StatusFor(err, businessErrors...)

	shell.RecordCommandMetrics(ctx, c.metricsCollector, commandType, status, duration)
	shell.FinishSpan(c.tracingCollector, span, status, duration, err)

	switch status {
	case shell.StatusSuccess:
		shell.LogCommandSuccess(ctx, c.logger, c.contextualLogger, commandType, businessOutcome, duration)
	case shell.StatusRejected:
		shell.LogCommandRejected(ctx, c.logger, c.contextualLogger, commandType, err)
	default:
		shell.LogCommandError(ctx, c.logger, c.contextualLogger, commandType, err)
	}
}

func validateKeys(ctx context.Context, userName string, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return errors.Join(emptyKeyErrors(userName, title)...)
}

func emptyKeyErrors(userName string, title string) []error {
	var errs []error

	if userName == "" {
		errs = append(errs, core.ErrEmptyUserName)
	}
	if title == "" {
		errs = append(errs, core.ErrEmptyTitle)
	}

	return errs
}
