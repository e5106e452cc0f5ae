package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nguyentantai21042004/speaker-flow/internal/transcript"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS diarization_jobs (
		job_id        VARCHAR(36)  NOT NULL PRIMARY KEY,
		source        VARCHAR(512) NOT NULL,
		segment_count INT          NOT NULL,
		speaker_count INT          NOT NULL,
		created_at    DATETIME     NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS diarization_segments (
		job_id        VARCHAR(36) NOT NULL,
		segment_index INT         NOT NULL,
		speaker       VARCHAR(64) NOT NULL,
		start_sec     DOUBLE      NOT NULL,
		end_sec       DOUBLE      NOT NULL,
		text          TEXT        NOT NULL,
		PRIMARY KEY (job_id, segment_index)
	)`,
}

const (
	upsertJobQuery = `INSERT INTO diarization_jobs (job_id, source, segment_count, speaker_count, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE source = VALUES(source), segment_count = VALUES(segment_count),
			speaker_count = VALUES(speaker_count), created_at = VALUES(created_at)`
	deleteSegmentsQuery = `DELETE FROM diarization_segments WHERE job_id = ?`
	insertSegmentsQuery = `INSERT INTO diarization_segments (job_id, segment_index, speaker, start_sec, end_sec, text)
		VALUES (:job_id, :segment_index, :speaker, :start_sec, :end_sec, :text)`
	listSegmentsQuery = `SELECT segment_index, speaker, start_sec, end_sec, text
		FROM diarization_segments WHERE job_id = ? ORDER BY segment_index`
)

type segmentRow struct {
	JobID        string  `db:"job_id"`
	SegmentIndex int     `db:"segment_index"`
	Speaker      string  `db:"speaker"`
	StartSec     float64 `db:"start_sec"`
	EndSec       float64 `db:"end_sec"`
	Text         string  `db:"text"`
}

func (r *implRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// SaveJob writes the job row and all its segments in one transaction. Saving
// the same job again replaces the earlier rows, so redelivered jobs succeed.
func (r *implRepository) SaveJob(ctx context.Context, jobID, source string, tagged []transcript.Tagged) error {
	speakers := make(map[string]struct{})
	rows := make([]segmentRow, len(tagged))
	for i, t := range tagged {
		speakers[t.Speaker] = struct{}{}
		rows[i] = segmentRow{
			JobID:        jobID,
			SegmentIndex: t.SegmentIndex,
			Speaker:      t.Speaker,
			StartSec:     t.Start,
			EndSec:       t.End,
			Text:         t.Text,
		}
	}

	err := r.withTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, upsertJobQuery, jobID, source, len(tagged), len(speakers), time.Now().UTC()); err != nil {
			return fmt.Errorf("upsert job: %w", err)
		}
		if _, err := tx.ExecContext(ctx, deleteSegmentsQuery, jobID); err != nil {
			return fmt.Errorf("delete old segments: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NamedExecContext(ctx, insertSegmentsQuery, rows); err != nil {
			return fmt.Errorf("insert segments: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug(ctx, "Saved job %s with %d segments", jobID, len(rows))
	return nil
}

func (r *implRepository) ListSegments(ctx context.Context, jobID string) ([]transcript.Tagged, error) {
	var rows []segmentRow
	if err := r.db.SelectContext(ctx, &rows, listSegmentsQuery, jobID); err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}

	tagged := make([]transcript.Tagged, len(rows))
	for i, row := range rows {
		tagged[i] = transcript.Tagged{
			SegmentIndex: row.SegmentIndex,
			Speaker:      row.Speaker,
			Start:        row.StartSec,
			End:          row.EndSec,
			Text:         row.Text,
		}
	}
	return tagged, nil
}

func (r *implRepository) Close() error {
	return r.db.Close()
}

func (r *implRepository) withTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Warn(ctx, "Rollback failed: %v", rbErr)
		}
		return err
	}
	return tx.Commit()
}
