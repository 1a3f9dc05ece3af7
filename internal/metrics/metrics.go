package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	UsersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweeter_users_created_total",
		Help: "Total users created",
	})
	TweetsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweeter_tweets_created_total",
		Help: "Total tweets published",
	})
	EngagementOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweeter_engagement_ops_total",
		Help: "Total engagement transitions by operation",
	}, []string{"op"})

	SnapshotUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tweeter_snapshot_users",
		Help: "Users counted by the last usage snapshot",
	})
	SnapshotTweets = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tweeter_snapshot_tweets",
		Help: "Tweets counted by the last usage snapshot",
	})
	SnapshotFollows = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tweeter_snapshot_follow_edges",
		Help: "Follow edges counted by the last usage snapshot",
	})
	SnapshotLikes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tweeter_snapshot_likes",
		Help: "Like edges counted by the last usage snapshot",
	})
	SnapshotRetweets = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tweeter_snapshot_retweets",
		Help: "Retweet edges counted by the last usage snapshot",
	})
)

func init() {
	prometheus.MustRegister(
		UsersCreated, TweetsCreated, EngagementOps,
		SnapshotUsers, SnapshotTweets, SnapshotFollows, SnapshotLikes, SnapshotRetweets,
	)
}
