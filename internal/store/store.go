// Package store keeps the history of crawls and the channels they ranked.
package store

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"tgscout/internal/components/assert"
	"tgscout/internal/components/telemetry"
	"tgscout/internal/ranking"

	"github.com/jmoiron/sqlx"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

const (
	report_store_open  = "store.open"
	report_store_save  = "store.save-crawl"
	report_store_saved = "store.saved-channels"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	sqlx.BindDriver("libsql", sqlx.QUESTION)
}

type Crawl struct {
	ID           int64   `db:"id"`
	SeedURL      string  `db:"seed_url"`
	Mode         string  `db:"mode"`
	StartedAt    int64   `db:"started_at"`
	FinishedAt   int64   `db:"finished_at"`
	ChannelCount int     `db:"channel_count"`
	FlaggedCount int     `db:"flagged_count"`
	AverageScore float64 `db:"average_score"`
	Cancelled    bool    `db:"cancelled"`
}

type Channel struct {
	CrawlID      int64   `db:"crawl_id"`
	Rank         int     `db:"rank"`
	URL          string  `db:"url"`
	Text         string  `db:"text"`
	Members      string  `db:"members"`
	MembersValue float64 `db:"members_value"`
	Description  string  `db:"description"`
	Category     string  `db:"category"`
	Source       string  `db:"source"`
	Score        int     `db:"score"`
	Analysis     string  `db:"analysis"`
	Flagged      bool    `db:"flagged"`
}

// Run is everything saved about one crawl.
type Run struct {
	SeedURL    string
	Mode       string
	StartedAt  time.Time
	FinishedAt time.Time
	Cancelled  bool
	Evaluation ranking.Evaluation
}

type Store struct {
	db  *sqlx.DB
	tel telemetry.API
}

// driverOf picks libsql for remote urls and the embedded sqlite driver for anything else.
func driverOf(dsn string) string {
	for _, prefix := range []string{"libsql://", "http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "libsql"
		}
	}
	return "sqlite"
}

// Open connects to dsn and creates the tables if they do not exist yet. dsn is a sqlite file
// path, ":memory:" or a libsql url.
func Open(ctx context.Context, dsn string, tel telemetry.API) (*Store, error) {
	assert.NotEmptyStr(dsn)
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("store", tel)

	driver := driverOf(dsn)
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
		_, err = db.ExecContext(ctx, "PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}

	_, err = db.ExecContext(ctx, Schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	tel.ReportDebug(report_store_open, driver)
	return &Store{db: db, tel: tel}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveCrawl stores a crawl with its ranked channels and returns the id of the crawl.
func (s *Store) SaveCrawl(ctx context.Context, run Run) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowxContext(
		ctx,
		`insert into crawls (
			seed_url, mode, started_at, finished_at,
			channel_count, flagged_count, average_score, cancelled
		) values (?, ?, ?, ?, ?, ?, ?, ?)
		returning id`,
		run.SeedURL,
		run.Mode,
		run.StartedAt.Unix(),
		run.FinishedAt.Unix(),
		len(run.Evaluation.Sorted),
		len(run.Evaluation.Flagged),
		run.Evaluation.Average,
		run.Cancelled,
	).Scan(&id)
	if err != nil {
		s.tel.ReportBroken(report_store_save, fmt.Errorf("insert crawl: %w", err), run.SeedURL)
		return 0, fmt.Errorf("insert crawl: %w", err)
	}

	flagged := make(map[string]struct{}, len(run.Evaluation.Flagged))
	for _, f := range run.Evaluation.Flagged {
		flagged[f.URL] = struct{}{}
	}

	for i, scored := range run.Evaluation.Sorted {
		_, isFlagged := flagged[scored.URL]
		_, err = tx.NamedExecContext(
			ctx,
			`insert into crawl_channels (
				crawl_id, rank, url, text, members, members_value,
				description, category, source, score, analysis, flagged
			) values (
				:crawl_id, :rank, :url, :text, :members, :members_value,
				:description, :category, :source, :score, :analysis, :flagged
			)`,
			Channel{
				CrawlID:      id,
				Rank:         i + 1,
				URL:          scored.URL,
				Text:         scored.Text,
				Members:      scored.Members.String(),
				MembersValue: scored.Members.Value(),
				Description:  scored.Description,
				Category:     scored.Category,
				Source:       scored.Source,
				Score:        scored.Score,
				Analysis:     strings.Join(scored.Rationale, "; "),
				Flagged:      isFlagged,
			},
		)
		if err != nil {
			s.tel.ReportBroken(report_store_save, fmt.Errorf("insert channel: %w", err), scored.URL)
			return 0, fmt.Errorf("insert channel %s: %w", scored.URL, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	s.tel.ReportCount(report_store_saved, int64(len(run.Evaluation.Sorted)))
	return id, nil
}

// ListCrawls returns the most recent crawls first.
func (s *Store) ListCrawls(ctx context.Context, limit int) ([]Crawl, error) {
	if limit <= 0 {
		limit = 20
	}
	var crawls []Crawl
	err := s.db.SelectContext(
		ctx,
		&crawls,
		`select * from crawls order by started_at desc, id desc limit ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list crawls: %w", err)
	}
	return crawls, nil
}

// Crawl returns a single crawl, sql.ErrNoRows is wrapped when it does not exist.
func (s *Store) Crawl(ctx context.Context, id int64) (Crawl, error) {
	var crawl Crawl
	err := s.db.GetContext(ctx, &crawl, `select * from crawls where id = ?`, id)
	if err != nil {
		return Crawl{}, fmt.Errorf("get crawl %d: %w", id, err)
	}
	return crawl, nil
}

// CrawlChannels returns the channels of a crawl in rank order.
func (s *Store) CrawlChannels(ctx context.Context, id int64) ([]Channel, error) {
	var channels []Channel
	err := s.db.SelectContext(
		ctx,
		&channels,
		`select * from crawl_channels where crawl_id = ? order by rank`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("get channels of crawl %d: %w", id, err)
	}
	return channels, nil
}
