package report

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/linkparity/linkparity/internal/crawler"
	"github.com/linkparity/linkparity/internal/diff"
	"github.com/linkparity/linkparity/internal/page"

	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"
)

// SQLiteSink persists snapshots, link records and diff rows to a SQLite
// database for querying after the run.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) the database and initializes the
// schema.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection avoids writer lock conflicts.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &SQLiteSink{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) initSchema() error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// WriteSnapshot stores a single-site page with its links in one
// transaction.
func (s *SQLiteSink) WriteSnapshot(snap *page.Snapshot) error {
	return s.insertPage("single", snap)
}

// WritePageDiff stores both sides of a compared page pair plus the
// classified rows.
func (s *SQLiteSink) WritePageDiff(base, upg *page.Snapshot, rows []diff.Row, counts diff.Counts) error {
	if err := s.insertPage("baseline", base); err != nil {
		return err
	}
	if err := s.insertPage("upgraded", upg); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO diffs (base_page_url, upg_page_url, kind, link_text, base_url, upg_url, base_status, upg_status, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare diff insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		if _, err := stmt.Exec(
			r.BasePageURL, r.UpgPageURL, string(r.Kind), r.LinkText,
			r.BaseURL, r.UpgURL, nullStatus(r.BaseStatus), nullStatus(r.UpgStatus), r.Note,
		); err != nil {
			return fmt.Errorf("failed to insert diff row: %w", err)
		}
	}

	return tx.Commit()
}

// WriteSummary stores the run totals; a re-run against the same database
// replaces them.
func (s *SQLiteSink) WriteSummary(sum crawler.Summary) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO run_summary (id, pages_visited, links_captured, missing, extra, wrong, finished_at)
		VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		sum.PagesVisited, sum.LinksCaptured, sum.Diff.Missing, sum.Diff.Extra, sum.Diff.Wrong)
	if err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func (s *SQLiteSink) insertPage(side string, snap *page.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		INSERT INTO pages (side, url, title, fetch_status, link_count)
		VALUES (?, ?, ?, ?, ?)`,
		side, snap.PageURL, snap.PageTitle, nullStatus(snap.FetchStatus), len(snap.Links))
	if err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}
	pageID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get page id: %w", err)
	}

	if len(snap.Links) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO links (page_id, link_text, abs_url, final_url, http_status, target, rel)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare link insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, rec := range snap.Links {
			if _, err := stmt.Exec(pageID, rec.Text, rec.AbsoluteURL, rec.FinalURL, nullStatus(rec.Status), rec.Target, rec.Rel); err != nil {
				return fmt.Errorf("failed to insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// nullStatus maps the zero "absent" status to NULL.
func nullStatus(status int) any {
	if status == 0 {
		return nil
	}
	return status
}
