// Package storage provides the topic source and the persistence sink. The
// Postgres implementation mirrors the production schema: topics with
// keywords, subscriptions, stored news, and outbound email records.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"newsflow/internal/news"
)

// Topic is a subscribable news category with its keyword set.
type Topic struct {
	ID       int
	Name     string
	Keywords []string
}

// TopicSource supplies topics and their active subscribers.
type TopicSource interface {
	Topics(ctx context.Context) ([]Topic, error)
	// ActiveSubscribers returns only users whose subscription to the topic
	// is active, not pending.
	ActiveSubscribers(ctx context.Context, topicID int) ([]string, error)
}

// StoreResult reports what a StoreNews call persisted.
type StoreResult struct {
	NewsCount  int
	EmailCount int
}

// Sink persists final articles and the outbound-email records linking
// articles to recipients.
type Sink interface {
	StoreNews(ctx context.Context, articles []news.FinalArticle, recipients []string, topicLabel string) (StoreResult, error)
}

// PostgresStore implements TopicSource and Sink against Postgres.
type PostgresStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ TopicSource = (*PostgresStore)(nil)
var _ Sink = (*PostgresStore)(nil)

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tags (
		tag_id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	);

	CREATE TABLE IF NOT EXISTS keywords (
		keyword_id SERIAL PRIMARY KEY,
		tag_id INTEGER NOT NULL REFERENCES tags(tag_id),
		content VARCHAR(255) NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		user_id SERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS user_tags (
		user_id INTEGER NOT NULL REFERENCES users(user_id),
		tag_id INTEGER NOT NULL REFERENCES tags(tag_id),
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (user_id, tag_id)
	);

	CREATE TABLE IF NOT EXISTS sources (
		source_id SERIAL PRIMARY KEY,
		source_domain VARCHAR(255) UNIQUE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS news (
		new_id SERIAL PRIMARY KEY,
		url TEXT UNIQUE NOT NULL,
		title TEXT,
		description TEXT,
		source_id INTEGER REFERENCES sources(source_id),
		published_at TIMESTAMP NOT NULL DEFAULT NOW(),
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_news_url ON news(url);
	CREATE INDEX IF NOT EXISTS idx_news_published_at ON news(published_at);

	CREATE TABLE IF NOT EXISTS emails (
		email_id SERIAL PRIMARY KEY,
		recipient INTEGER NOT NULL REFERENCES users(user_id),
		subject VARCHAR(255),
		message TEXT,
		status VARCHAR(50) NOT NULL DEFAULT 'sent',
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS emails_content (
		email_id INTEGER NOT NULL REFERENCES emails(email_id),
		news_id INTEGER NOT NULL REFERENCES news(new_id),
		PRIMARY KEY (email_id, news_id)
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Topics loads every tag with its keyword list, in tag order.
func (s *PostgresStore) Topics(ctx context.Context) ([]Topic, error) {
	rows, err := s.sb.
		Select("t.tag_id", "t.name", "k.content").
		From("tags t").
		LeftJoin("keywords k ON k.tag_id = t.tag_id").
		OrderBy("t.tag_id", "k.keyword_id").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	var topics []Topic
	index := map[int]int{}
	for rows.Next() {
		var id int
		var name string
		var keyword sql.NullString
		if err := rows.Scan(&id, &name, &keyword); err != nil {
			return nil, fmt.Errorf("scan topic row: %w", err)
		}

		pos, ok := index[id]
		if !ok {
			pos = len(topics)
			index[id] = pos
			topics = append(topics, Topic{ID: id, Name: name})
		}
		if keyword.Valid {
			topics[pos].Keywords = append(topics[pos].Keywords, keyword.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("topics iteration: %w", err)
	}
	return topics, nil
}

// ActiveSubscribers returns the emails of users with an active (not
// pending) subscription to the topic.
func (s *PostgresStore) ActiveSubscribers(ctx context.Context, topicID int) ([]string, error) {
	rows, err := s.sb.
		Select("u.email").
		From("users u").
		Join("user_tags ut ON ut.user_id = u.user_id").
		Where(sq.Eq{"ut.tag_id": topicID, "ut.is_active": true}).
		OrderBy("u.email").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan subscriber row: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("subscribers iteration: %w", err)
	}
	return emails, nil
}

// StoreNews upserts articles by link, creates one outbound-email record per
// recipient, and attaches the articles to each record. The whole write is
// one transaction so a half-stored digest never survives.
func (s *PostgresStore) StoreNews(ctx context.Context, articles []news.FinalArticle, recipients []string, topicLabel string) (StoreResult, error) {
	if len(articles) == 0 {
		return StoreResult{}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return StoreResult{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	newsIDs := make([]int, 0, len(articles))
	for _, article := range articles {
		domain := article.DisplayLink
		if domain == "" {
			domain = "unknown"
		}

		var sourceID int
		err := tx.QueryRowContext(ctx, `
			INSERT INTO sources (source_domain) VALUES ($1)
			ON CONFLICT (source_domain) DO UPDATE SET source_domain = EXCLUDED.source_domain
			RETURNING source_id
		`, domain).Scan(&sourceID)
		if err != nil {
			return StoreResult{}, fmt.Errorf("upsert source %s: %w", domain, err)
		}

		publishedAt, description := SplitSummaryDate(article.Summary, time.Now())

		var newsID int
		err = tx.QueryRowContext(ctx, `
			INSERT INTO news (url, title, description, source_id, published_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (url) DO UPDATE SET url = EXCLUDED.url
			RETURNING new_id
		`, article.Link, article.Title, description, sourceID, publishedAt).Scan(&newsID)
		if err != nil {
			return StoreResult{}, fmt.Errorf("upsert news %s: %w", article.Link, err)
		}
		newsIDs = append(newsIDs, newsID)
	}

	emailCount := 0
	for _, recipient := range recipients {
		var userID int
		err := tx.QueryRowContext(ctx, `SELECT user_id FROM users WHERE email = $1`, recipient).Scan(&userID)
		if err == sql.ErrNoRows {
			slog.Warn("recipient has no user record, skipping", "email", recipient)
			continue
		}
		if err != nil {
			return StoreResult{}, fmt.Errorf("lookup user %s: %w", recipient, err)
		}

		var emailID int
		err = tx.QueryRowContext(ctx, `
			INSERT INTO emails (recipient, subject, message, status)
			VALUES ($1, $2, 'Top News', 'sent')
			RETURNING email_id
		`, userID, topicLabel).Scan(&emailID)
		if err != nil {
			return StoreResult{}, fmt.Errorf("insert email record: %w", err)
		}

		for _, newsID := range newsIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO emails_content (email_id, news_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, emailID, newsID); err != nil {
				return StoreResult{}, fmt.Errorf("attach news to email: %w", err)
			}
		}
		emailCount++
	}

	if err := tx.Commit(); err != nil {
		return StoreResult{}, fmt.Errorf("commit: %w", err)
	}
	return StoreResult{NewsCount: len(newsIDs), EmailCount: emailCount}, nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var (
	slashDatePattern = regexp.MustCompile(`^(\d{4}/\d{2}/\d{2})\s*-\s*(.+)$`)
	longDatePattern  = regexp.MustCompile(`^([A-Za-z]+\s+\d{1,2},\s+\d{4})\s*-\s*(.+)$`)
)

// SplitSummaryDate separates the leading date some summaries carry
// ("2026/08/12 - text" or "Aug 12, 2026 - text") from the description.
// Without a recognizable date the summary stays whole and fallback is used
// as the publish instant.
func SplitSummaryDate(summary string, fallback time.Time) (time.Time, string) {
	if m := slashDatePattern.FindStringSubmatch(summary); m != nil {
		if t, err := time.Parse("2006/01/02", m[1]); err == nil {
			return t, m[2]
		}
	}
	if m := longDatePattern.FindStringSubmatch(summary); m != nil {
		for _, layout := range []string{"January 2, 2006", "Jan 2, 2006"} {
			if t, err := time.Parse(layout, m[1]); err == nil {
				return t, m[2]
			}
		}
	}
	return fallback, summary
}
