// Package metrics счётчики бота для /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "finance_bot"

type Metrics struct {
	// Updates входящие апдейты: kind=message|callback, result=ok|duplicate|error|panic
	Updates *prometheus.CounterVec
	// Commands выполненные команды: kind из command.Kind, success=true|false
	Commands *prometheus.CounterVec
	// Notifications рассылка: result=sent|failed|dropped
	Notifications *prometheus.CounterVec
	HandleSeconds prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Telegram updates received.",
		}, []string{"kind", "result"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Ledger commands executed.",
		}, []string{"kind", "success"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Broadcast messages by delivery result.",
		}, []string{"result"}),
		HandleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_handle_seconds",
			Help:      "Time spent handling one update.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.Updates, m.Commands, m.Notifications, m.HandleSeconds)
	return m
}

// Nop метрики в отдельном реестре, для тестов и когда metrics.enabled=false.
func Nop() *Metrics { return New(prometheus.NewRegistry()) }
