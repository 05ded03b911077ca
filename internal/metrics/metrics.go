// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェアやハンドラーから利用する。
type MetricsCollector interface {
	RecordLogin(newUser bool)
	RecordNoteCreated(representation string)
	RecordRejection(reason string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	logins         *prometheus.CounterVec
	notesCreated   *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_logins_total",
			Help: "ログインの合計数（新規ユーザーかどうか別）",
		}, []string{"new_user"}),
		notesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_created_total",
			Help: "作成されたメモの合計数（応答の表現形式別）",
		}, []string{"representation"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_security_rejections_total",
			Help: "セキュリティ上の理由で拒否したリクエスト数",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notes_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "notes_request_latency_seconds",
			Help:    "リクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.logins,
		c.notesCreated,
		c.rejections,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordLogin はログインを記録する。
func (c *Collector) RecordLogin(newUser bool) {
	c.logins.WithLabelValues(strconv.FormatBool(newUser)).Inc()
}

// RecordNoteCreated はメモ作成を記録する。
func (c *Collector) RecordNoteCreated(representation string) {
	c.notesCreated.WithLabelValues(representation).Inc()
}

// RecordRejection はセキュリティ上の拒否を記録する。
func (c *Collector) RecordRejection(reason string) {
	c.rejections.WithLabelValues(reason).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
