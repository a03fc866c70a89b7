package queue

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const itemColumns = `id, source_path, basename, title, status, transcript_path,
    final_file, error_message, transcript_reused, source_bytes, created_at, updated_at,
    progress_stage, progress_percent, progress_message, last_heartbeat`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(scanner rowScanner) (*Item, error) {
	var (
		item             Item
		title            sql.NullString
		transcriptPath   sql.NullString
		finalFile        sql.NullString
		errorMessage     sql.NullString
		transcriptReused sql.NullInt64
		createdAt        string
		updatedAt        string
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		lastHeartbeat    sql.NullString
	)

	if err := scanner.Scan(
		&item.ID,
		&item.SourcePath,
		&item.Basename,
		&title,
		&item.Status,
		&transcriptPath,
		&finalFile,
		&errorMessage,
		&transcriptReused,
		&item.SourceBytes,
		&createdAt,
		&updatedAt,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&lastHeartbeat,
	); err != nil {
		return nil, fmt.Errorf("scan queue item: %w", err)
	}

	item.Title = title.String
	item.TranscriptPath = transcriptPath.String
	item.FinalFile = finalFile.String
	item.ErrorMessage = errorMessage.String
	item.TranscriptReused = transcriptReused.Valid && transcriptReused.Int64 != 0
	item.ProgressStage = progressStage.String
	item.ProgressPercent = progressPercent.Float64
	item.ProgressMessage = progressMessage.String

	var err error
	if item.CreatedAt, err = parseTimeString(createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTimeString(updatedAt); err != nil {
		return nil, err
	}
	if lastHeartbeat.Valid && lastHeartbeat.String != "" {
		parsed, err := parseTimeString(lastHeartbeat.String)
		if err != nil {
			return nil, err
		}
		item.LastHeartbeat = &parsed
	}

	return &item, nil
}

func parseTimeString(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", count), ", ")
}
