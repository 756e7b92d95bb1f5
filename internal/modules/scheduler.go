package modules

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CheckFunc checks one module. It must publish the module's export table to
// the scheduler's registry before returning nil, and must not publish once
// ctx is done.
type CheckFunc func(ctx context.Context, id string) error

// Scheduler checks the modules of a Graph concurrently. A module starts once
// every dependency outside its own import cycle has been published.
type Scheduler struct {
	Graph    *Graph
	Registry *Registry
	// Limit caps concurrent checks; zero means GOMAXPROCS.
	Limit int
	// Logger receives progress lines; nil disables them.
	Logger *log.Logger
}

func (s *Scheduler) logf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

// Run checks every module and stops at the first failure. Modules whose check
// was cancelled leave the registry untouched.
func (s *Scheduler) Run(ctx context.Context, check CheckFunc) error {
	order, cycleErr := s.Graph.Order()
	if cycleErr != nil {
		s.logf("import cycle: %v", cycleErr)
	}
	s.Registry.Expect(order...)

	limit := s.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	sem := make(chan struct{}, limit)
	done := make(map[string]chan struct{}, len(order))
	for _, id := range order {
		done[id] = make(chan struct{})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range order {
		deps := s.Graph.Dependencies(id)
		g.Go(func() error {
			for _, dep := range deps {
				select {
				case <-done[dep]:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			s.logf("checking %s", id)
			err := check(gctx, id)
			<-sem
			if err != nil {
				return fmt.Errorf("checking %s: %w", id, err)
			}
			if !s.Registry.Published(id) {
				return fmt.Errorf("checking %s: finished without publishing", id)
			}
			close(done[id])
			return nil
		})
	}
	return g.Wait()
}
