package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ---------------------------------------------------------------------------
// Record Sources
// ---------------------------------------------------------------------------

var errNotFound = errors.New("record not found")

// recordSource loads notes and the jobs they were raised against.
type recordSource interface {
	Note(ctx context.Context, id string) (*WasteTransferNote, error)
	Job(ctx context.Context, id string) (*Job, error)
	// NotesForDay returns the notes whose resolved date of service is day
	// (YYYY-MM-DD).
	NotesForDay(ctx context.Context, day string) ([]*WasteTransferNote, error)
	Close()
}

// openRecordSource prefers the database and falls back to a records
// directory.
func openRecordSource(ctx context.Context, cfg *Config) (recordSource, error) {
	switch {
	case cfg.Database.DSN != "":
		return openPGStore(ctx, cfg.Database.DSN)
	case cfg.RecordsDir != "":
		return &dirStore{dir: cfg.RecordsDir}, nil
	default:
		return nil, fmt.Errorf("no record source configured: set database.dsn or records_dir")
	}
}

// ---- Postgres ----

type pgStore struct {
	pool *pgxpool.Pool
}

func openPGStore(ctx context.Context, dsn string) (*pgStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}
	config.MaxConns = 4
	config.MaxConnLifetime = 3 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return &pgStore{pool: pool}, nil
}

func (s *pgStore) Close() { s.pool.Close() }

// queryJSON runs a single-row query returning row_to_json text and decodes
// it into dst.
func (s *pgStore) queryJSON(ctx context.Context, dst any, sql string, args ...any) error {
	var raw string
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errNotFound
		}
		return err
	}
	return json.Unmarshal([]byte(raw), dst)
}

const (
	noteByIDSQL = `SELECT row_to_json(w)::text FROM waste_transfer_notes w WHERE w.id::text = $1`

	// notesForDaySQL resolves the date the way resolvedDateOfService does:
	// the note's own date, then the date of the job jobFor would load. Job
	// columns go through jsonb as archived rows may lack either date column.
	notesForDaySQL = `
		SELECT row_to_json(w)::text
		FROM waste_transfer_notes w
		LEFT JOIN jobs j ON j.id = w.job_id
		LEFT JOIN archived_jobs a ON a.id = w.job_id
		WHERE coalesce(
			nullif(trim(w.date_of_service::text), ''),
			CASE WHEN j.id IS NOT NULL THEN coalesce(
				nullif(trim(to_jsonb(j)->>'date_of_service'), ''),
				nullif(trim(to_jsonb(j)->>'archived_date_of_service'), ''))
			ELSE coalesce(
				nullif(trim(to_jsonb(a)->>'date_of_service'), ''),
				nullif(trim(to_jsonb(a)->>'archived_date_of_service'), ''))
			END
		) = $1
		ORDER BY w.id`
)

// jobTables are searched in order.
var jobTables = []string{"jobs", "archived_jobs"}

func jobByIDSQL(table string) string {
	return `SELECT row_to_json(j)::text FROM ` + table + ` j WHERE j.id::text = $1`
}

// findJob asks lookup for each job table in turn. A table without the row
// reports errNotFound.
func findJob(id string, lookup func(table string) (*Job, error)) (*Job, error) {
	for _, table := range jobTables {
		job, err := lookup(table)
		if errors.Is(err, errNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load job %s: %w", id, err)
		}
		return job, nil
	}
	return nil, fmt.Errorf("failed to load job %s: %w", id, errNotFound)
}

// decodeRows decodes row_to_json text rows.
func decodeRows[T any](raws []string) ([]*T, error) {
	out := make([]*T, 0, len(raws))
	for i, raw := range raws {
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("failed to decode row %d: %w", i, err)
		}
		out = append(out, &v)
	}
	return out, nil
}

func (s *pgStore) Note(ctx context.Context, id string) (*WasteTransferNote, error) {
	var w WasteTransferNote
	if err := s.queryJSON(ctx, &w, noteByIDSQL, id); err != nil {
		return nil, fmt.Errorf("failed to load note %s: %w", id, err)
	}
	return &w, nil
}

func (s *pgStore) Job(ctx context.Context, id string) (*Job, error) {
	return findJob(id, func(table string) (*Job, error) {
		var job Job
		if err := s.queryJSON(ctx, &job, jobByIDSQL(table), id); err != nil {
			return nil, err
		}
		return &job, nil
	})
}

func (s *pgStore) NotesForDay(ctx context.Context, day string) ([]*WasteTransferNote, error) {
	rows, err := s.pool.Query(ctx, notesForDaySQL, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes for %s: %w", day, err)
	}
	raws, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read notes for %s: %w", day, err)
	}
	notes, err := decodeRows[WasteTransferNote](raws)
	if err != nil {
		return nil, fmt.Errorf("failed to decode notes for %s: %w", day, err)
	}
	return notes, nil
}

// ---- JSON directory ----

// dirStore reads table exports: waste_transfer_notes.json, jobs.json and
// archived_jobs.json, each a JSON array of rows. Missing job files count as
// empty tables.
type dirStore struct {
	dir string
}

func (s *dirStore) Close() {}

func (s *dirStore) readTable(name string, dst any, optional bool) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".json"))
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (s *dirStore) notes() ([]*WasteTransferNote, error) {
	var notes []*WasteTransferNote
	if err := s.readTable("waste_transfer_notes", &notes, false); err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *dirStore) Note(_ context.Context, id string) (*WasteTransferNote, error) {
	notes, err := s.notes()
	if err != nil {
		return nil, err
	}
	for _, w := range notes {
		if w != nil && w.ID.String() == id {
			return w, nil
		}
	}
	return nil, fmt.Errorf("failed to load note %s: %w", id, errNotFound)
}

func (s *dirStore) Job(_ context.Context, id string) (*Job, error) {
	return findJob(id, func(table string) (*Job, error) {
		var jobs []*Job
		if err := s.readTable(table, &jobs, true); err != nil {
			return nil, err
		}
		for _, job := range jobs {
			if job != nil && job.ID.String() == id {
				return job, nil
			}
		}
		return nil, errNotFound
	})
}

func (s *dirStore) NotesForDay(ctx context.Context, day string) ([]*WasteTransferNote, error) {
	notes, err := s.notes()
	if err != nil {
		return nil, err
	}

	var matched []*WasteTransferNote
	for _, w := range notes {
		if w == nil {
			continue
		}
		date := strings.TrimSpace(w.DateOfService)
		if date == "" && w.JobID != "" {
			if job, err := s.Job(ctx, w.JobID.String()); err == nil {
				date = firstNonBlank(job.DateOfService, job.ArchivedDateOfService)
			}
		}
		if date == day {
			matched = append(matched, w)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].ID.String() < matched[j].ID.String()
	})
	return matched, nil
}

// loadNote fetches a note and, when it references one, its job. A missing
// job is not an error.
func loadNote(ctx context.Context, src recordSource, id string) (*WasteTransferNote, *Job, error) {
	w, err := src.Note(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	job, err := jobFor(ctx, src, w)
	if err != nil {
		return nil, nil, err
	}
	return w, job, nil
}

func jobFor(ctx context.Context, src recordSource, w *WasteTransferNote) (*Job, error) {
	if w.JobID == "" {
		return nil, nil
	}
	job, err := src.Job(ctx, w.JobID.String())
	if errors.Is(err, errNotFound) {
		loggerFromContext(ctx).Debug("job not found, using note date only", "job", w.JobID)
		return nil, nil
	}
	return job, err
}
