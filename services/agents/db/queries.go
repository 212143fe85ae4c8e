package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Release struct {
	Version   string
	Channel   string
	FetchedAt int64
}

type UserAgent struct {
	Value       string
	Version     string
	GeneratedAt int64
}

const createRelease = `
INSERT OR REPLACE INTO releases (version, channel, fetched_at)
VALUES (?, ?, ?)
`

type CreateReleaseParams struct {
	Version   string
	Channel   string
	FetchedAt int64
}

func (q *Queries) CreateRelease(ctx context.Context, arg CreateReleaseParams) error {
	_, err := q.db.ExecContext(ctx, createRelease, arg.Version, arg.Channel, arg.FetchedAt)
	return err
}

const deleteReleases = `
DELETE FROM releases
`

func (q *Queries) DeleteReleases(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteReleases)
	return err
}

const listReleases = `
SELECT version, channel, fetched_at FROM releases
ORDER BY version
`

func (q *Queries) ListReleases(ctx context.Context) ([]Release, error) {
	rows, err := q.db.QueryContext(ctx, listReleases)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Release
	for rows.Next() {
		var i Release
		if err := rows.Scan(&i.Version, &i.Channel, &i.FetchedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createUserAgent = `
INSERT OR REPLACE INTO user_agents (value, version, generated_at)
VALUES (?, ?, ?)
`

type CreateUserAgentParams struct {
	Value       string
	Version     string
	GeneratedAt int64
}

func (q *Queries) CreateUserAgent(ctx context.Context, arg CreateUserAgentParams) error {
	_, err := q.db.ExecContext(ctx, createUserAgent, arg.Value, arg.Version, arg.GeneratedAt)
	return err
}

const deleteUserAgents = `
DELETE FROM user_agents
`

func (q *Queries) DeleteUserAgents(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteUserAgents)
	return err
}

const listUserAgents = `
SELECT value, version, generated_at FROM user_agents
ORDER BY value
`

func (q *Queries) ListUserAgents(ctx context.Context) ([]UserAgent, error) {
	rows, err := q.db.QueryContext(ctx, listUserAgents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []UserAgent
	for rows.Next() {
		var i UserAgent
		if err := rows.Scan(&i.Value, &i.Version, &i.GeneratedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const countUserAgents = `
SELECT COUNT(*) FROM user_agents
`

func (q *Queries) CountUserAgents(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUserAgents)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getUserAgentAt = `
SELECT value, version, generated_at FROM user_agents
ORDER BY value
LIMIT 1 OFFSET ?
`

func (q *Queries) GetUserAgentAt(ctx context.Context, offset int64) (UserAgent, error) {
	row := q.db.QueryRowContext(ctx, getUserAgentAt, offset)
	var i UserAgent
	err := row.Scan(&i.Value, &i.Version, &i.GeneratedAt)
	return i, err
}

const createCrawlRun = `
INSERT INTO crawl_runs (started_at, source, releases, generated, rejected)
VALUES (?, ?, ?, ?, ?)
`

type CreateCrawlRunParams struct {
	StartedAt int64
	Source    string
	Releases  int64
	Generated int64
	Rejected  int64
}

func (q *Queries) CreateCrawlRun(ctx context.Context, arg CreateCrawlRunParams) error {
	_, err := q.db.ExecContext(ctx, createCrawlRun,
		arg.StartedAt, arg.Source, arg.Releases, arg.Generated, arg.Rejected)
	return err
}
