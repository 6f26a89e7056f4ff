// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/naka-gawa/star-trend/internal/domain"
)

// DefaultPageSize is the largest page GitHub serves for stargazers.
const DefaultPageSize = 100

// ErrRepositoryNotFound is returned when GitHub does not know the repository.
var ErrRepositoryNotFound = errors.New("repository not found")

// StarEvent is one notification of a star history fetch.
// Progress events carry History, a complete snapshot of everything fetched
// so far. The terminal event carries either Final or Err.
type StarEvent struct {
	History domain.StarHistory
	Final   *domain.StarStats
	Err     error
}

// Terminal reports whether e ends the stream.
func (e StarEvent) Terminal() bool {
	return e.Final != nil || e.Err != nil
}

// Provider defines the behavior of a gateway for fetching repository data.
type Provider interface {
	FetchRepositoryMetadata(ctx context.Context, owner, name string) (*domain.RepoStats, error)
	// FetchStarHistory streams progress events and closes the channel after
	// the terminal event. If ctx is cancelled the channel may close without one.
	FetchStarHistory(ctx context.Context, owner, name string) <-chan StarEvent
}

// Options tune the GitHub gateway.
type Options struct {
	// EnterpriseURL is the base URL of a GitHub Enterprise Server, empty for github.com.
	EnterpriseURL string
	// PageSize is the number of stargazers requested per GraphQL page.
	PageSize int
}

// GitHubGateway is the concrete implementation of the Provider interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	pageSize      int
	logger        *log.Logger
}

// stargazersQuery pages through stargazers in the order they starred.
type stargazersQuery struct {
	Repository struct {
		CreatedAt  githubv4.DateTime
		Stargazers struct {
			TotalCount int
			PageInfo   struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
			Edges []struct {
				StarredAt githubv4.DateTime
			}
		} `graphql:"stargazers(first: $pageSize, after: $cursor, orderBy: {field: STARRED_AT, direction: ASC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, opts Options, logger *log.Logger) (Provider, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}

	restClient := github.NewClient(httpClient)
	graphqlClient := githubv4.NewClient(httpClient)
	if opts.EnterpriseURL != "" {
		restClient, err = restClient.WithEnterpriseURLs(opts.EnterpriseURL, opts.EnterpriseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure enterprise URL: %w", err)
		}
		graphqlClient = githubv4.NewEnterpriseClient(strings.TrimSuffix(opts.EnterpriseURL, "/")+"/api/graphql", httpClient)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}
	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		pageSize:      pageSize,
		logger:        logger,
	}, nil
}

// FetchRepositoryMetadata reads owner, name and creation date over REST.
func (g *GitHubGateway) FetchRepositoryMetadata(ctx context.Context, owner, name string) (*domain.RepoStats, error) {
	g.logger.Printf("Gateway: Fetching repository %s/%s using REST API...", owner, name)
	repo, resp, err := g.restClient.Repositories.Get(ctx, owner, name)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s/%s", ErrRepositoryNotFound, owner, name)
		}
		return nil, fmt.Errorf("failed to get repository with REST API: %w", err)
	}
	g.logger.Println("Gateway: Completed fetching repository data.")
	return &domain.RepoStats{
		Owner:     repo.GetOwner().GetLogin(),
		Name:      repo.GetName(),
		CreatedAt: repo.GetCreatedAt().Time,
	}, nil
}

// FetchStarHistory pages through the stargazers over GraphQL. Each page
// produces a progress event with the day-bucketed history so far; the
// terminal event carries the total star count and creation date.
func (g *GitHubGateway) FetchStarHistory(ctx context.Context, owner, name string) <-chan StarEvent {
	events := make(chan StarEvent, 1)
	go func() {
		defer close(events)
		final, err := g.fetchStargazers(ctx, owner, name, func(h domain.StarHistory) bool {
			select {
			case events <- StarEvent{History: h}:
				return true
			case <-ctx.Done():
				return false
			}
		})
		terminal := StarEvent{Final: final}
		if err != nil {
			terminal = StarEvent{Err: err}
		}
		select {
		case events <- terminal:
		case <-ctx.Done():
		}
	}()
	return events
}

func (g *GitHubGateway) fetchStargazers(ctx context.Context, owner, name string, progress func(domain.StarHistory) bool) (*domain.StarStats, error) {
	g.logger.Printf("Gateway: Fetching stargazers of %s/%s using GraphQL API...", owner, name)
	variables := map[string]interface{}{
		"owner":    githubv4.String(owner),
		"name":     githubv4.String(name),
		"pageSize": githubv4.Int(g.pageSize),
		"cursor":   (*githubv4.String)(nil),
	}

	var history domain.StarHistory
	for page := 1; ; page++ {
		var q stargazersQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL query for stargazers: %w", err)
		}
		for _, edge := range q.Repository.Stargazers.Edges {
			history = history.AddStar(edge.StarredAt.Time)
		}
		// The last bucket keeps growing on the next page, so hand out a copy.
		if !progress(history.Clone()) {
			return nil, ctx.Err()
		}
		if !q.Repository.Stargazers.PageInfo.HasNextPage {
			g.logger.Printf("Gateway: Completed fetching %d stargazers in %d pages.", history.Total(), page)
			return &domain.StarStats{
				TotalStar: q.Repository.Stargazers.TotalCount,
				CreatedAt: q.Repository.CreatedAt.Time,
			}, nil
		}
		variables["cursor"] = githubv4.NewString(q.Repository.Stargazers.PageInfo.EndCursor)
		g.logger.Println("  Fetching next page of stargazers...")
	}
}
