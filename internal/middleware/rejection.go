package middleware

// 拒否理由。メトリクスのラベルとして使う。
const (
	RejectUnauthenticated = "unauthenticated"
	RejectForgeryToken    = "forgery_token"
	RejectCrossSite       = "cross_site"
	RejectRateLimited     = "rate_limited"
	RejectNotAcceptable   = "not_acceptable"
)

// RejectionRecorder はセキュリティ上の拒否を記録するインターフェース。
// metrics.Collectorがこれを満たす。
type RejectionRecorder interface {
	RecordRejection(reason string)
}

// recordRejection はrecがnilでなければ拒否を記録する。
func recordRejection(rec RejectionRecorder, reason string) {
	if rec != nil {
		rec.RecordRejection(reason)
	}
}
