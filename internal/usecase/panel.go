// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/naka-gawa/star-trend/internal/domain"
	"github.com/naka-gawa/star-trend/internal/gateway"
	"github.com/naka-gawa/star-trend/internal/store"
	"golang.org/x/sync/errgroup"
)

var errStreamClosed = errors.New("star history stream closed without a result")

// Panel is the use case behind the repository and star trend sections.
// It runs fetches through the provider and writes their results to the store.
type Panel struct {
	provider gateway.Provider
	store    *store.Store
	logger   *log.Logger
}

// NewPanel creates a new Panel instance.
func NewPanel(provider gateway.Provider, st *store.Store, logger *log.Logger) *Panel {
	return &Panel{
		provider: provider,
		store:    st,
		logger:   logger,
	}
}

// Refresh loads the repository metadata and the star history concurrently.
// Each section records its own failure in the store, so one failing fetch
// does not cancel the other. The first error is returned.
func (p *Panel) Refresh(ctx context.Context, owner, name string) error {
	p.logger.Println("Panel: Starting refresh...")

	var eg errgroup.Group
	eg.Go(func() error {
		return p.LoadRepository(ctx, owner, name)
	})
	eg.Go(func() error {
		return p.LoadStarHistory(ctx, owner, name)
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	p.logger.Println("Panel: Refresh complete.")
	return nil
}

// LoadRepository fetches the repository metadata and replaces repoStats.
func (p *Panel) LoadRepository(ctx context.Context, owner, name string) error {
	req, err := p.store.Begin(store.KeyRepoStats)
	if err != nil {
		return err
	}

	repo, err := p.provider.FetchRepositoryMetadata(ctx, owner, name)
	if err != nil {
		return p.fail(req, fmt.Errorf("failed to fetch repository metadata: %w", err))
	}
	if err := req.UpdateState(store.KeyRepoStats, *repo); err != nil {
		return p.ignoreStale(err)
	}
	return p.ignoreStale(req.Done())
}

// LoadStarHistory consumes the provider's star history stream. Every
// progress snapshot replaces starData wholesale; the terminal event
// replaces starStats. Both slices share the request's status.
func (p *Panel) LoadStarHistory(ctx context.Context, owner, name string) error {
	req, err := p.store.Begin(store.KeyStarData, store.KeyStarStats)
	if err != nil {
		return err
	}

	// Stops the provider when we return before its terminal event.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for event := range p.provider.FetchStarHistory(streamCtx, owner, name) {
		switch {
		case event.Err != nil:
			return p.fail(req, fmt.Errorf("failed to fetch star history: %w", event.Err))
		case event.Final != nil:
			return p.ignoreStale(p.finishStars(req, *event.Final))
		default:
			if err := p.applyProgress(req, event.History); err != nil {
				if errors.Is(err, store.ErrStaleRequest) {
					return p.ignoreStale(err)
				}
				return p.fail(req, err)
			}
		}
	}

	cause := ctx.Err()
	if cause == nil {
		cause = errStreamClosed
	}
	return p.fail(req, fmt.Errorf("failed to fetch star history: %w", cause))
}

func (p *Panel) applyProgress(req *store.Request, history domain.StarHistory) error {
	p.logger.Printf("Panel: Received star history snapshot with %d days.", len(history))
	if err := req.UpdateState(store.KeyStarData, history); err != nil {
		return err
	}

	prior := p.currentMaxIncrement()
	if _, maxIncrement := domain.IncrementSeries(history, prior); maxIncrement != prior {
		return req.UpdateStatsField(store.KeyStarStats, store.Patch{MaxIncrement: &maxIncrement})
	}
	return nil
}

// finishStars replaces starStats with the provider's summary while keeping
// maxIncrement from shrinking.
func (p *Panel) finishStars(req *store.Request, final domain.StarStats) error {
	state := p.store.Snapshot()
	prior := 0
	if state.StarStats != nil {
		prior = state.StarStats.MaxIncrement
	}
	_, final.MaxIncrement = domain.IncrementSeries(state.StarData, max(prior, final.MaxIncrement))

	if err := req.UpdateState(store.KeyStarStats, final); err != nil {
		return err
	}
	p.logger.Printf("Panel: Star history complete, %d stars in total.", final.TotalStar)
	return req.Done()
}

func (p *Panel) currentMaxIncrement() int {
	if st := p.store.Snapshot().StarStats; st != nil {
		return st.MaxIncrement
	}
	return 0
}

func (p *Panel) fail(req *store.Request, err error) error {
	p.logger.Printf("Panel: %v", err)
	if failErr := req.Fail(err); failErr != nil {
		return p.ignoreStale(failErr)
	}
	return err
}

// ignoreStale swallows updates rejected because a newer fetch took over.
func (p *Panel) ignoreStale(err error) error {
	if errors.Is(err, store.ErrStaleRequest) {
		p.logger.Printf("Panel: Dropping result of superseded request: %v", err)
		return nil
	}
	return err
}
