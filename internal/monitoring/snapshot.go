package monitoring

import (
	"database/sql"
	"time"

	"github.com/Rouzbeh99/Tweeter-like-application/internal/metrics"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SnapshotUpdater periodically counts the domain's entities and edges and
// exports them as gauges plus one log line.
type SnapshotUpdater struct {
	db       *sql.DB
	schedule cron.Schedule
	done     chan bool
}

// NewSnapshotUpdater creates a SnapshotUpdater. spec is a standard cron
// expression or descriptor such as "@every 1m".
func NewSnapshotUpdater(db *sql.DB, spec string) (*SnapshotUpdater, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, err
	}
	return &SnapshotUpdater{
		db:       db,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the periodic snapshots.
func (su *SnapshotUpdater) Run() {
	log.Info().Msg("Starting background usage snapshot updater...")

	// Run once immediately on start
	su.snapshot()

	for {
		next := su.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-su.done:
			timer.Stop()
			log.Info().Msg("Stopping background usage snapshot updater.")
			return
		case <-timer.C:
			su.snapshot()
		}
	}
}

// Stop halts the updater.
func (su *SnapshotUpdater) Stop() {
	su.done <- true
}

func (su *SnapshotUpdater) snapshot() {
	counts := []struct {
		query string
		gauge interface{ Set(float64) }
		field string
		value int
	}{
		{query: "SELECT COUNT(*) FROM users", gauge: metrics.SnapshotUsers, field: "users"},
		{query: "SELECT COUNT(*) FROM tweets", gauge: metrics.SnapshotTweets, field: "tweets"},
		{query: "SELECT COUNT(*) FROM follows", gauge: metrics.SnapshotFollows, field: "follows"},
		{query: "SELECT COUNT(*) FROM likes", gauge: metrics.SnapshotLikes, field: "likes"},
		{query: "SELECT COUNT(*) FROM retweets", gauge: metrics.SnapshotRetweets, field: "retweets"},
	}

	event := log.Info()
	for i := range counts {
		c := &counts[i]
		if err := su.db.QueryRow(c.query).Scan(&c.value); err != nil {
			log.Error().Err(err).Str("entity", c.field).Msg("Usage snapshot query failed")
			return
		}
		c.gauge.Set(float64(c.value))
		event = event.Int(c.field, c.value)
	}
	event.Msg("usage snapshot")
}
