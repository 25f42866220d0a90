package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Métricas compartilhadas do núcleo de apostas.
// Registradas no registry global; expostas via StartMetricsServer.
var (
	BetsPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "betting_bets_placed_total",
		Help: "Apostas aceitas pelo betting-service",
	})

	BetsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betting_bets_rejected_total",
		Help: "Apostas recusadas, por motivo de validação",
	}, []string{"reason"})

	MarketsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betting_markets_settled_total",
		Help: "Mercados liquidados, por caminho (result|manual|cancelled)",
	}, []string{"path"})

	BetsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "betting_bets_settled_total",
		Help: "Apostas resolvidas na liquidação, por resultado",
	}, []string{"result"})

	SettlementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "betting_settlement_duration_seconds",
		Help:    "Duração da transação de liquidação de um mercado",
		Buckets: prometheus.DefBuckets,
	})
)
