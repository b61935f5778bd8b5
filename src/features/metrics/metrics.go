package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for library activity, exposed on /metrics.
var (
	SongsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vaulted_songs_imported_total",
		Help: "Number of songs imported into the library.",
	})

	PlaylistsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vaulted_playlists_created_total",
		Help: "Number of playlists created.",
	})

	PlaylistsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vaulted_playlists_deleted_total",
		Help: "Number of playlists deleted.",
	})

	SongsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vaulted_songs_deleted_total",
		Help: "Number of songs removed from the library.",
	})
)
