package services

import "github.com/prometheus/client_golang/prometheus"

var (
	companiesIngestedCounter prometheus.Counter
	companyUpdatesCounter    *prometheus.CounterVec
	snapshotsExportedCounter prometheus.Counter
)

func init() {
	companiesIngestedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "companies_ingested_total",
			Help: "Total number of companies imported from the CSV export.",
		},
	)
	companyUpdatesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "company_updates_total",
			Help: "Total number of successful company mutations by operation.",
		},
		[]string{"operation"},
	)
	snapshotsExportedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "company_snapshots_exported_total",
			Help: "Total number of ranking snapshots uploaded to object storage.",
		},
	)
	prometheus.MustRegister(companiesIngestedCounter, companyUpdatesCounter, snapshotsExportedCounter)
}
