package queue

import (
	"context"
	"fmt"
	"time"
)

// ResetStuckProcessing rolls items left in a processing status back to the
// status they should resume from. Called on startup after an unclean exit.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	var total int64
	for _, transition := range stageRollbackTransitions {
		res, err := s.execWithRetry(
			ctx,
			`UPDATE queue_items
             SET status = ?, progress_stage = NULL, progress_percent = 0,
                 progress_message = NULL, last_heartbeat = NULL, updated_at = ?
             WHERE status = ?`,
			transition.to,
			now,
			transition.from,
		)
		if err != nil {
			return total, fmt.Errorf("reset stuck %s items: %w", transition.from, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("rows affected: %w", err)
		}
		total += affected
	}
	return total, nil
}

// UpdateHeartbeat records liveness for an item currently being processed.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE queue_items SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now,
		now,
		id,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// ReclaimStaleProcessing rolls back items whose heartbeat is older than the
// timeout, returning the IDs reclaimed. Items without a heartbeat are left
// alone; the stage records one before long-running work begins.
func (s *Store) ReclaimStaleProcessing(ctx context.Context, timeout time.Duration) ([]int64, error) {
	cutoff := time.Now().UTC().Add(-timeout)

	var reclaimed []int64
	for _, transition := range stageRollbackTransitions {
		rows, err := s.db.QueryContext(
			ctx,
			`SELECT id, last_heartbeat FROM queue_items WHERE status = ? AND last_heartbeat IS NOT NULL`,
			transition.from,
		)
		if err != nil {
			return reclaimed, fmt.Errorf("query %s heartbeats: %w", transition.from, err)
		}

		var stale []int64
		for rows.Next() {
			var (
				id        int64
				heartbeat string
			)
			if err := rows.Scan(&id, &heartbeat); err != nil {
				rows.Close()
				return reclaimed, fmt.Errorf("scan heartbeat: %w", err)
			}
			parsed, err := parseTimeString(heartbeat)
			if err != nil {
				rows.Close()
				return reclaimed, err
			}
			if parsed.Before(cutoff) {
				stale = append(stale, id)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return reclaimed, err
		}
		rows.Close()

		now := time.Now().UTC().Format(time.RFC3339Nano)
		for _, id := range stale {
			if err := s.execWithoutResultRetry(
				ctx,
				`UPDATE queue_items
                 SET status = ?, progress_stage = NULL, progress_percent = 0,
                     progress_message = NULL, last_heartbeat = NULL, updated_at = ?
                 WHERE id = ? AND status = ?`,
				transition.to,
				now,
				id,
				transition.from,
			); err != nil {
				return reclaimed, fmt.Errorf("reclaim item %d: %w", id, err)
			}
			reclaimed = append(reclaimed, id)
		}
	}
	return reclaimed, nil
}

// FailAllProcessing marks in-flight items failed with the given reason.
// Used during shutdown when work cannot be resumed.
func (s *Store) FailAllProcessing(ctx context.Context, reason string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	statuses := ProcessingStatuses()
	placeholders := makePlaceholders(len(statuses))
	args := []any{StatusFailed, reason, now}
	for _, status := range statuses {
		args = append(args, status)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE queue_items
         SET status = ?, error_message = ?, last_heartbeat = NULL, updated_at = ?
         WHERE status IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("fail processing items: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// Health reports queue totals by lifecycle state.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	var summary HealthSummary

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM queue_items GROUP BY status`)
	if err != nil {
		return summary, fmt.Errorf("queue health: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return summary, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		switch status {
		case StatusPending:
			summary.Pending += count
		case StatusTranscribing, StatusOrganizing:
			summary.Processing += count
		case StatusFailed:
			summary.Failed += count
		case StatusCompleted:
			summary.Completed += count
		}
	}
	return summary, rows.Err()
}
