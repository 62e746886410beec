package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS series (
	id          VARCHAR PRIMARY KEY,
	name        VARCHAR NOT NULL,
	description VARCHAR,
	genre       VARCHAR,
	completed   BOOLEAN DEFAULT false,
	favorite    BOOLEAN DEFAULT false,
	read        BOOLEAN DEFAULT false
);
CREATE TABLE IF NOT EXISTS chapters (
	id           VARCHAR PRIMARY KEY,
	series_id    VARCHAR NOT NULL,
	position     INTEGER NOT NULL,
	title        VARCHAR,
	file_path    VARCHAR NOT NULL,
	read         BOOLEAN DEFAULT false,
	current_page INTEGER DEFAULT 0,
	last_read    TIMESTAMP
);`

// InitDuckDB opens the database at path, creating parent directories and the schema
func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// OpenRepository initializes the database file and wraps it in a Repository
func OpenRepository(path string) (*Repository, error) {
	db, err := InitDuckDB(path)
	if err != nil {
		return nil, err
	}
	return NewRepository(db), nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// SaveSeries inserts or replaces the series row. Chapters are saved separately.
func (r *Repository) SaveSeries(series *Series) error {
	if series == nil {
		return fmt.Errorf("series cannot be nil")
	}
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO series (id, name, description, genre, completed, favorite, read)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		series.ID, series.Name, series.Description, series.Genre,
		series.Completed, series.Favorite, series.Read,
	)
	if err != nil {
		return fmt.Errorf("failed to save series: %w", err)
	}
	return nil
}

// SaveChapter inserts or replaces a chapter at the given attach position
func (r *Repository) SaveChapter(chapter *Chapter, position int) error {
	if chapter == nil {
		return fmt.Errorf("chapter cannot be nil")
	}
	var lastRead any
	if chapter.LastRead != nil {
		lastRead = *chapter.LastRead
	}
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO chapters (id, series_id, position, title, file_path, read, current_page, last_read)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		chapter.ID, chapter.SeriesID, position, chapter.Title, chapter.FilePath,
		chapter.Read, chapter.CurrentPage, lastRead,
	)
	if err != nil {
		return fmt.Errorf("failed to save chapter: %w", err)
	}
	return nil
}

// GetSeries returns the series with its chapters, or nil when it does not exist
func (r *Repository) GetSeries(id string) (*Series, error) {
	row := r.db.QueryRow(
		`SELECT id, name, description, genre, completed, favorite, read FROM series WHERE id = ?`, id)

	series, err := scanSeries(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get series: %w", err)
	}

	chapters, err := r.GetChapters(id)
	if err != nil {
		return nil, err
	}
	series.Chapters = chapters
	return series, nil
}

// ListSeries returns every series ordered by name, without chapters
func (r *Repository) ListSeries() ([]*Series, error) {
	rows, err := r.db.Query(
		`SELECT id, name, description, genre, completed, favorite, read FROM series ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	defer rows.Close()

	var out []*Series
	for rows.Next() {
		series, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan series: %w", err)
		}
		out = append(out, series)
	}
	return out, rows.Err()
}

// GetChapters returns the chapters of a series in attach order
func (r *Repository) GetChapters(seriesID string) ([]*Chapter, error) {
	rows, err := r.db.Query(
		`SELECT id, series_id, title, file_path, read, current_page, last_read
		 FROM chapters WHERE series_id = ? ORDER BY position`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chapters: %w", err)
	}
	defer rows.Close()

	var out []*Chapter
	for rows.Next() {
		var (
			ch       Chapter
			title    sql.NullString
			lastRead sql.NullTime
		)
		if err := rows.Scan(&ch.ID, &ch.SeriesID, &title, &ch.FilePath, &ch.Read, &ch.CurrentPage, &lastRead); err != nil {
			return nil, fmt.Errorf("failed to scan chapter: %w", err)
		}
		ch.Title = title.String
		if lastRead.Valid {
			t := lastRead.Time
			ch.LastRead = &t
		}
		out = append(out, &ch)
	}
	return out, rows.Err()
}

// GetSeriesWithChapterCount returns the series plus total and read chapter counts
func (r *Repository) GetSeriesWithChapterCount(id string) (*Series, int, int, error) {
	series, err := r.GetSeries(id)
	if err != nil || series == nil {
		return series, 0, 0, err
	}

	read := 0
	for _, ch := range series.Chapters {
		if ch.Read {
			read++
		}
	}
	return series, len(series.Chapters), read, nil
}

// MarkLastRead stamps the chapter as the most recently read one
func (r *Repository) MarkLastRead(ctx context.Context, chapterID string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE chapters SET last_read = ? WHERE id = ?`, r.now(), chapterID)
	if err != nil {
		return fmt.Errorf("failed to update last read: %w", err)
	}
	return requireRow(res, chapterID)
}

// SaveProgress stores the current page and read flag of a chapter
func (r *Repository) SaveProgress(ctx context.Context, chapterID string, page int, read bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE chapters SET current_page = ?, read = ? WHERE id = ?`, page, read, chapterID)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return requireRow(res, chapterID)
}

// DeleteSeries removes the series and all of its chapters
func (r *Repository) DeleteSeries(id string) error {
	if _, err := r.db.Exec(`DELETE FROM chapters WHERE series_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete chapters: %w", err)
	}
	if _, err := r.db.Exec(`DELETE FROM series WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete series: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSeries(s scanner) (*Series, error) {
	var (
		series      Series
		description sql.NullString
		genre       sql.NullString
	)
	if err := s.Scan(&series.ID, &series.Name, &description, &genre,
		&series.Completed, &series.Favorite, &series.Read); err != nil {
		return nil, err
	}
	series.Description = description.String
	series.Genre = genre.String
	return &series, nil
}

func requireRow(res sql.Result, chapterID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil
	}
	if n == 0 {
		return fmt.Errorf("chapter %s not found", chapterID)
	}
	return nil
}
