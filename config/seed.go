package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/library-coordination-go/library/catalog"
	"github.com/AntonStoeckl/library-coordination-go/library/core"
	"github.com/AntonStoeckl/library-coordination-go/library/roster"
)

var (
	ErrInvalidSeed           = errors.New("invalid seed")
	ErrUnsupportedSeedFormat = errors.New("unsupported seed file format")
)

// Scenario step actions.
const (
	ActionSearchTitle  = "search_title"
	ActionSearchAuthor = "search_author"
	ActionCheck        = "check"
	ActionBorrow       = "borrow"
	ActionReturn       = "return"
	ActionHistory      = "history"
)

// Seed is the initial state of the library plus an optional scripted scenario.
// Availability is not part of the seed: a book is unavailable exactly when a user holds it.
type Seed struct {
	Books    []SeedBook `yaml:"books" toml:"books"`
	Users    []SeedUser `yaml:"users" toml:"users"`
	Scenario []Step     `yaml:"scenario" toml:"scenario"`
}

type SeedBook struct {
	Title  string `yaml:"title" toml:"title"`
	Author string `yaml:"author" toml:"author"`
}

// SeedUser lists the titles the user holds at start.
type SeedUser struct {
	Name     string   `yaml:"name" toml:"name"`
	Borrowed []string `yaml:"borrowed" toml:"borrowed"`
}

// Step is one scripted call against the coordinator.
// Query is the substring for searches, Title the exact title for everything else.
type Step struct {
	Action string `yaml:"action" toml:"action"`
	User   string `yaml:"user,omitempty" toml:"user"`
	Title  string `yaml:"title,omitempty" toml:"title"`
	Query  string `yaml:"query,omitempty" toml:"query"`
}

// DefaultSeed is the classic three-book library. Carol holds "1984" so it starts out unavailable.
func DefaultSeed() Seed {
	return Seed{
		Books: []SeedBook{
			{Title: "The Great Gatsby", Author: "F. Scott Fitzgerald"},
			{Title: "To Kill a Mockingbird", Author: "Harper Lee"},
			{Title: "1984", Author: "George Orwell"},
		},
		Users: []SeedUser{
			{Name: "Alice"},
			{Name: "Bob"},
			{Name: "Carol", Borrowed: []string{"1984"}},
		},
		Scenario: []Step{
			{Action: ActionSearchTitle, Query: "The"},
			{Action: ActionCheck, Title: "1984"},
			{Action: ActionBorrow, User: "Bob", Title: "1984"},
			{Action: ActionBorrow, User: "Alice", Title: "To Kill a Mockingbird"},
			{Action: ActionCheck, Title: "To Kill a Mockingbird"},
			{Action: ActionReturn, User: "Alice", Title: "To Kill a Mockingbird"},
			{Action: ActionCheck, Title: "To Kill a Mockingbird"},
			{Action: ActionHistory, User: "Alice"},
		},
	}
}

// LoadSeed reads and validates a seed file. The format follows the extension: .yaml, .yml or .toml.
func LoadSeed(path string) (Seed, error) {
	var seed Seed

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Seed{}, fmt.Errorf("read seed file %s: %w", path, err)
		}
		if err = yaml.Unmarshal(data, &seed); err != nil {
			return Seed{}, fmt.Errorf("parse seed file %s: %w", path, err)
		}

	case ".toml":
		meta, err := toml.DecodeFile(path, &seed)
		if err != nil {
			return Seed{}, fmt.Errorf("parse seed file %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Seed{}, fmt.Errorf("%w: unknown keys in %s: %v", ErrInvalidSeed, path, undecoded)
		}

	default:
		return Seed{}, fmt.Errorf("%w: %q", ErrUnsupportedSeedFormat, ext)
	}

	if err := seed.Validate(); err != nil {
		return Seed{}, fmt.Errorf("seed file %s: %w", path, err)
	}

	return seed, nil
}

// Validate reports every violation: empty keys, duplicate titles or user names,
// held titles missing from the books and titles held by more than one user.
func (s Seed) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidSeed}, args...)...))
	}

	titles := make(map[string]bool, len(s.Books))
	for i, b := range s.Books {
		switch {
		case b.Title == "":
			invalid("book %d has an empty title", i)
		case titles[b.Title]:
			invalid("duplicate title %q", b.Title)
		}
		titles[b.Title] = true
	}

	names := make(map[string]bool, len(s.Users))
	holders := make(map[string]string)
	for i, u := range s.Users {
		switch {
		case u.Name == "":
			invalid("user %d has an empty name", i)
		case names[u.Name]:
			invalid("duplicate user name %q", u.Name)
		}
		names[u.Name] = true

		for _, title := range u.Borrowed {
			if !titles[title] {
				invalid("user %q holds unknown title %q", u.Name, title)
				continue
			}
			if holder, held := holders[title]; held {
				invalid("title %q is held by both %q and %q", title, holder, u.Name)
				continue
			}
			holders[title] = u.Name
		}
	}

	for i, step := range s.Scenario {
		if err := step.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: scenario step %d: %w", ErrInvalidSeed, i, err))
		}
	}

	return errors.Join(errs...)
}

func (st Step) validate() error {
	switch st.Action {
	case ActionSearchTitle, ActionSearchAuthor:
		return nil // an empty query matches everything
	case ActionCheck:
		if st.Title == "" {
			return errors.New("check needs a title")
		}
	case ActionBorrow, ActionReturn:
		if st.User == "" || st.Title == "" {
			return fmt.Errorf("%s needs a user and a title", st.Action)
		}
	case ActionHistory:
		if st.User == "" {
			return errors.New("history needs a user")
		}
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}

	return nil
}

// Build creates the catalog and roster described by a valid seed.
// Held titles start out unavailable and appear in their holder's borrowed list.
func (s Seed) Build() (*catalog.Catalog, *roster.Roster) {
	authors := make(map[string]string, len(s.Books))
	held := make(map[string]bool)
	for _, b := range s.Books {
		authors[b.Title] = b.Author
	}

	users := make([]core.User, 0, len(s.Users))
	for _, su := range s.Users {
		u := core.BuildUser(su.Name)
		for _, title := range su.Borrowed {
			u.BorrowedBooks = append(u.BorrowedBooks, core.BuildBorrowedRecord(title, authors[title]))
			held[title] = true
		}
		users = append(users, u)
	}

	books := make([]core.Book, 0, len(s.Books))
	for _, sb := range s.Books {
		b := core.BuildBook(sb.Title, sb.Author)
		b.IsAvailable = !held[sb.Title]
		books = append(books, b)
	}

	return catalog.New(books...), roster.New(users...)
}
