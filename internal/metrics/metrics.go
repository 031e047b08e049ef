// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StoreMetrics はストア業務イベントのメトリクス収集インターフェース。
// サービス層から利用する。
type StoreMetrics interface {
	RecordRegistration()
	RecordLogin()
	RecordPurchase(total float64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestLatency  prometheus.Histogram
	registrations   prometheus.Counter
	logins          prometheus.Counter
	purchases       prometheus.Counter
	purchaseRevenue prometheus.Counter
	rateLimited     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "petstore_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "petstore_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "petstore_registrations_total",
			Help: "ユーザー登録の合計数",
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "petstore_logins_total",
			Help: "ログイン成功の合計数",
		}),
		purchases: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "petstore_purchases_total",
			Help: "購入（決済成功）の合計数",
		}),
		purchaseRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "petstore_purchase_revenue_total",
			Help: "購入金額の合計",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "petstore_rate_limited_total",
			Help: "レート制限により拒否されたリクエスト数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.registrations,
		c.logins,
		c.purchases,
		c.purchaseRevenue,
		c.rateLimited,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordRegistration はユーザー登録を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLogin はログイン成功を記録する。
func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

// RecordPurchase は購入成功と購入金額を記録する。
func (c *Collector) RecordPurchase(total float64) {
	c.purchases.Inc()
	c.purchaseRevenue.Add(total)
}

// RecordRateLimited はレート制限による拒否を記録する。
func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
