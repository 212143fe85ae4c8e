// Package agents owns the identifier pipeline: acquired release records
// and the validated user-agent set live in a SQL store, and each
// operation (crawl, generate, export) replaces its slice of that store
// wholesale. there is no update-in-place, a rerun overwrites.
package agents

import (
	"context"
	"database/sql"
	"errors"
	"time"
	"uaforge/lib/useragent"
	"uaforge/services/agents/db"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/agents")

// ErrEmptySet is returned by Pick when no validated identifiers exist
// yet.
var ErrEmptySet = errors.New("the user agent set is empty, run crawl and generate first")

// ReleaseSource produces the current sequence of published release
// records. satisfied by *firefox.Client.
type ReleaseSource interface {
	FetchReleases(ctx context.Context) ([]useragent.Release, error)
}

type Options struct {
	Source ReleaseSource
	// SourceName labels crawl runs for diagnostics.
	SourceName string
	Template   useragent.Template
	Platforms  []useragent.Platform
	// MinMajor is the oldest major version that still generates
	// candidates. zero means useragent.DefaultMinMajor.
	MinMajor int
}

type Service struct {
	db   *sql.DB
	qry  *db.Queries
	opts Options
}

func NewService(database *sql.DB, opts Options) Service {
	if opts.MinMajor == 0 {
		opts.MinMajor = useragent.DefaultMinMajor
	}
	if len(opts.Platforms) == 0 {
		opts.Platforms = useragent.DefaultPlatforms
	}
	if opts.Template.Pattern == "" {
		opts.Template = useragent.Firefox
	}
	return Service{
		db:   database,
		qry:  db.New(database),
		opts: opts,
	}
}

// Crawl acquires the release listing and replaces the stored release
// records. retrieval failures surface to the caller untouched.
func (s Service) Crawl(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "Crawl")
	defer span.End()

	releases, err := s.opts.Source.FetchReleases(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int("releases", len(releases)))

	now := time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteReleases(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	for _, r := range releases {
		err := txqry.CreateRelease(ctx, db.CreateReleaseParams{
			Version:   r.Version,
			Channel:   string(r.Channel),
			FetchedAt: now,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, err
		}
	}
	err = txqry.CreateCrawlRun(ctx, db.CreateCrawlRunParams{
		StartedAt: now,
		Source:    s.opts.SourceName,
		Releases:  int64(len(releases)),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return len(releases), nil
}

type GenerateResult struct {
	Generated int
	// Rejected counts candidates dropped by validation, reported for
	// diagnostics and never fatal.
	Rejected int
}

// Generate renders one candidate per stored release and platform,
// validates the batch and replaces the stored user-agent set. a store
// without release records yields an empty set and no error.
func (s Service) Generate(ctx context.Context) (GenerateResult, error) {
	ctx, span := tracer.Start(ctx, "Generate")
	defer span.End()

	rows, err := s.qry.ListReleases(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GenerateResult{}, err
	}

	releases := make([]useragent.Release, len(rows))
	for i, r := range rows {
		releases[i] = useragent.Release{
			Version: r.Version,
			Channel: useragent.Channel(r.Channel),
		}
	}

	candidates := useragent.GenerateAll(s.opts.Template, releases, s.opts.Platforms, s.opts.MinMajor)
	set := useragent.ValidateSet(candidates, releases)
	span.SetAttributes(
		attribute.Int("candidates", len(candidates)),
		attribute.Int("generated", len(set.Agents)),
		attribute.Int("rejected", set.Rejected),
	)

	versions := map[string]string{}
	for _, ua := range set.Agents {
		version, _ := useragent.ProductVersion(ua)
		versions[ua] = version
	}

	now := time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GenerateResult{}, err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	err = txqry.DeleteUserAgents(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GenerateResult{}, err
	}
	for _, ua := range set.Agents {
		err := txqry.CreateUserAgent(ctx, db.CreateUserAgentParams{
			Value:       ua,
			Version:     versions[ua],
			GeneratedAt: now,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return GenerateResult{}, err
		}
	}
	err = txqry.CreateCrawlRun(ctx, db.CreateCrawlRunParams{
		StartedAt: now,
		Source:    "generate",
		Releases:  int64(len(releases)),
		Generated: int64(len(set.Agents)),
		Rejected:  int64(set.Rejected),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GenerateResult{}, err
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return GenerateResult{}, err
	}

	return GenerateResult{
		Generated: len(set.Agents),
		Rejected:  set.Rejected,
	}, nil
}

// List returns the stored user-agent set in its canonical (sorted)
// order.
func (s Service) List(ctx context.Context) ([]db.UserAgent, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()

	rows, err := s.qry.ListUserAgents(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return rows, nil
}

// Pick returns one uniformly random member of the stored set, for
// consumers that rotate identifiers between requests.
func (s Service) Pick(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "Pick")
	defer span.End()

	count, err := s.qry.CountUserAgents(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if count == 0 {
		return "", ErrEmptySet
	}

	offset, err := random.IntRange(0, int(count))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	row, err := s.qry.GetUserAgentAt(ctx, int64(offset))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return row.Value, nil
}
