package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-coordination-go/config"
	"github.com/AntonStoeckl/library-coordination-go/library/coordinator"
	"github.com/AntonStoeckl/library-coordination-go/library/core"
)

func newRunCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Replay the scenario of the seed file and print the final state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(s.cfg, s.logOut)

			seed, err := a.seed()
			if err != nil {
				return err
			}

			coord, err := a.newCoordinator(seed)
			if err != nil {
				return err
			}

			if err = runScenario(cmd.Context(), coord, seed.Scenario, s.out); err != nil {
				return errors.Join(err, a.close(cmd.Context()))
			}

			printState(s.out, coord)

			return a.finish(cmd.Context(), coord, s.out)
		},
	}
}

// runScenario executes the steps in order and prints one line per outcome.
// Refusals are outcomes, technical failures abort the run.
func runScenario(ctx context.Context, coord *coordinator.Coordinator, steps []config.Step, out io.Writer) error {
	for i, step := range steps {
		line, err := runStep(ctx, coord, step)
		if err != nil {
			return fmt.Errorf("scenario step %d (%s): %w", i, step.Action, err)
		}
		fmt.Fprintf(out, "%2d. %s\n", i+1, line)
	}

	return nil
}

func runStep(ctx context.Context, coord *coordinator.Coordinator, step config.Step) (string, error) {
	switch step.Action {
	case config.ActionSearchTitle:
		return fmt.Sprintf("search title %q: %s", step.Query, bookList(coord.SearchBookByTitle(step.Query))), nil

	case config.ActionSearchAuthor:
		return fmt.Sprintf("search author %q: %s", step.Query, bookList(coord.SearchBookByAuthor(step.Query))), nil

	case config.ActionCheck:
		return fmt.Sprintf("check %q: available=%t", step.Title, coord.CheckAvailability(step.Title)), nil

	case config.ActionBorrow:
		err := coord.BorrowBook(ctx, step.User, step.Title)
		return outcome(fmt.Sprintf("%s borrows %q", step.User, step.Title), err)

	case config.ActionReturn:
		err := coord.ReturnBook(ctx, step.User, step.Title)
		return outcome(fmt.Sprintf("%s returns %q", step.User, step.Title), err)

	case config.ActionHistory:
		result, err := coord.History(ctx, step.User)
		if errors.Is(err, coordinator.ErrJournalDisabled) {
			return fmt.Sprintf("history of %s: journal disabled", step.User), nil
		}
		if err != nil {
			return "", err
		}

		return fmt.Sprintf("history of %s: %d entries, holding %s",
			step.User, len(result.Entries), titleList(result.CurrentlyBorrowed)), nil
	}

	return "", fmt.Errorf("unknown action %q", step.Action)
}

func outcome(what string, err error) (string, error) {
	switch {
	case err == nil:
		return what + ": ok", nil
	case coordinator.IsRefusal(err):
		return fmt.Sprintf("%s: refused (%s)", what, err), nil
	default:
		return "", err
	}
}

func printState(out io.Writer, coord *coordinator.Coordinator) {
	fmt.Fprintln(out, "books:")
	for _, b := range coord.Books() {
		state := "available"
		if !b.IsAvailable {
			state = "borrowed"
		}
		fmt.Fprintf(out, "  %-28q %-22s %s\n", b.Title, b.Author, state)
	}

	fmt.Fprintln(out, "users:")
	for _, u := range coord.Users() {
		titles := make([]string, 0, len(u.BorrowedBooks))
		for _, b := range u.BorrowedBooks {
			titles = append(titles, b.Title)
		}
		fmt.Fprintf(out, "  %-10s %s\n", u.Name, titleList(titles))
	}
}

func bookList(books []core.Book) string {
	titles := make([]string, 0, len(books))
	for _, b := range books {
		titles = append(titles, b.Title)
	}

	return titleList(titles)
}

func titleList(titles []string) string {
	if len(titles) == 0 {
		return "none"
	}

	return `"` + strings.Join(titles, `", "`) + `"`
}
