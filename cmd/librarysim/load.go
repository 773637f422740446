package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/library-coordination-go/config"
	"github.com/AntonStoeckl/library-coordination-go/library/coordinator"
)

func newLoadCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Let concurrent users borrow and return random books, then verify consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(s.cfg, s.logOut)

			seed, err := a.seed()
			if err != nil {
				return err
			}

			readers := readerNames(s.cfg.Load.Users)
			coord, err := a.newCoordinator(withReaders(seed, readers))
			if err != nil {
				return err
			}

			titles := make([]string, 0, len(seed.Books))
			for _, b := range seed.Books {
				titles = append(titles, b.Title)
			}

			stats, err := runLoad(cmd.Context(), coord, readers, titles, s.cfg.Load.Rounds)
			if err != nil {
				_ = a.close(cmd.Context())
				return err
			}

			fmt.Fprintf(s.out, "load: %d users x %d rounds: %d borrowed, %d returned, %d refused\n",
				len(readers), s.cfg.Load.Rounds, stats.borrowed.Load(), stats.returned.Load(), stats.refused.Load())

			return a.finish(cmd.Context(), coord, s.out)
		},
	}

	cmd.Flags().Int("users", 8, "number of concurrent simulated users")
	cmd.Flags().Int("rounds", 100, "borrow or return attempts per user")
	bind(s.v, cmd.Flags(), map[string]string{
		config.KeyLoadUsers:  "users",
		config.KeyLoadRounds: "rounds",
	})

	return cmd
}

type loadStats struct {
	borrowed atomic.Int64
	returned atomic.Int64
	refused  atomic.Int64
}

// runLoad lets every reader run rounds attempts concurrently. A reader returns a random title it
// holds or tries to borrow a random title. Refusals are counted, technical failures stop all readers.
func runLoad(
	ctx context.Context,
	coord *coordinator.Coordinator,
	readers []string,
	titles []string,
	rounds int,
) (*loadStats, error) {
	stats := &loadStats{}
	if len(titles) == 0 {
		return stats, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, reader := range readers {
		rng := rand.New(rand.NewPCG(uint64(i), uint64(rounds)))

		g.Go(func() error {
			for range rounds {
				if err := ctx.Err(); err != nil {
					return err
				}

				err := step(ctx, coord, reader, titles, rng, stats)
				switch {
				case err == nil:
				case coordinator.IsRefusal(err):
					stats.refused.Add(1)
				default:
					return fmt.Errorf("%s: %w", reader, err)
				}
			}

			return nil
		})
	}

	return stats, g.Wait()
}

func step(
	ctx context.Context,
	coord *coordinator.Coordinator,
	reader string,
	titles []string,
	rng *rand.Rand,
	stats *loadStats,
) error {
	held, err := coord.BorrowedBooks(reader)
	if err != nil {
		return err
	}

	if len(held) > 0 && rng.IntN(2) == 0 {
		if err = coord.ReturnBook(ctx, reader, held[rng.IntN(len(held))].Title); err == nil {
			stats.returned.Add(1)
		}

		return err
	}

	if err = coord.BorrowBook(ctx, reader, titles[rng.IntN(len(titles))]); err == nil {
		stats.borrowed.Add(1)
	}

	return err
}

func readerNames(n int) []string {
	names := make([]string, 0, n)
	for i := range n {
		names = append(names, fmt.Sprintf("reader-%02d", i+1))
	}

	return names
}

// withReaders adds the simulated readers to the seed users. Names already taken are reused.
func withReaders(seed config.Seed, readers []string) config.Seed {
	seed.Users = slices.Clone(seed.Users)
	for _, name := range readers {
		if !slices.ContainsFunc(seed.Users, func(u config.SeedUser) bool { return u.Name == name }) {
			seed.Users = append(seed.Users, config.SeedUser{Name: name})
		}
	}
	seed.Scenario = nil

	return seed
}
