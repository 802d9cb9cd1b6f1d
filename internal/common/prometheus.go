package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal           = "http_requests_total"
	HTTPRequestDurationSeconds = "http_request_duration_seconds"
	MessageTotal               = "messages_total"
	LedgerTransactionTotal     = "ledger_transactions_total"
	LedgerTransactionFailure   = "ledger_transaction_failure"
)

var (
	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "code"}),
		MessageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MessageTotal,
			Help: "Count of all executed messages",
		}, []string{"action", "status"}),
		LedgerTransactionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: LedgerTransactionTotal,
			Help: "Count of all ledger transactions recorded",
		}, []string{"kind"}),
		LedgerTransactionFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: LedgerTransactionFailure,
			Help: "Count of all ledger transactions failed on chain",
		}, []string{"kind"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "code"}),
	}
)
