package gallery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	assetsRegisteredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "galeria_assets_registered_total",
		Help: "Total number of assets successfully registered.",
	})

	duplicatesDetectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "galeria_duplicates_detected_total",
		Help: "Total number of uploads rejected because the checksum already exists.",
	})

	shareResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "galeria_share_resolutions_total",
		Help: "Total number of share token resolutions by outcome.",
	}, []string{"outcome"})
)
