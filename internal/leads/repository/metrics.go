package repository

import (
	"context"
	"fmt"
	"time"
)

// ActivitySummary aggregates audit events for the dashboard metrics view.
type ActivitySummary struct {
	Total    int
	ByAction map[string]int
	ByActor  map[string]int
}

// ActivitySummary counts lead events in the window, grouped by action and by
// acting consultant.
func (r *Repo) ActivitySummary(ctx context.Context, from, to time.Time) (ActivitySummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT action, actor_name, COUNT(*)
		FROM lead_events
		WHERE occurred_at >= $1 AND occurred_at < $2
		GROUP BY action, actor_name
	`, from, to)
	if err != nil {
		return ActivitySummary{}, fmt.Errorf("lead activity summary: %w", err)
	}
	defer rows.Close()

	summary := ActivitySummary{
		ByAction: make(map[string]int),
		ByActor:  make(map[string]int),
	}
	for rows.Next() {
		var action, actor string
		var count int
		if err := rows.Scan(&action, &actor, &count); err != nil {
			return ActivitySummary{}, fmt.Errorf("scan lead activity row: %w", err)
		}
		summary.ByAction[action] += count
		summary.ByActor[actor] += count
		summary.Total += count
	}
	if err := rows.Err(); err != nil {
		return ActivitySummary{}, fmt.Errorf("lead activity summary: %w", err)
	}
	return summary, nil
}
