package workflow

import (
	"context"

	"scribe/internal/logging"
	"scribe/internal/queue"
	"scribe/internal/stage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running     bool
	LastError   string
	LastItem    *queue.Item
	Queue       queue.HealthSummary
	StageHealth map[string]stage.Health
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	lastItem := m.lastItem
	stageSet := make([]pipelineStage, len(m.stages))
	copy(stageSet, m.stages)
	m.mu.RUnlock()

	summary, err := m.store.Health(ctx)
	if err != nil && m.logger != nil {
		m.logger.Warn("failed to read queue health", logging.Error(err))
	}

	health := make(map[string]stage.Health, len(stageSet))
	for _, stg := range stageSet {
		if stg.handler == nil {
			continue
		}
		health[stg.name] = stg.handler.HealthCheck(ctx)
	}

	status := StatusSummary{Running: running, Queue: summary, StageHealth: health}
	if lastErr != nil {
		status.LastError = lastErr.Error()
	}
	if lastItem != nil {
		copied := *lastItem
		status.LastItem = &copied
	}
	return status
}
