package middleware

import (
	"net/http"
	"time"
)

// HTTPMetricsObserver はHTTPレスポンスの観測インターフェース。
type HTTPMetricsObserver interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// NewMetricsMiddleware はレスポンスのステータスコードとレイテンシを記録するミドルウェアを生成する。
func NewMetricsMiddleware(observer HTTPMetricsObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := newStatusRecorder(w)

			next.ServeHTTP(recorder, r)

			observer.RecordHTTPStatus(recorder.statusCode)
			observer.RecordRequestLatency(time.Since(start))
		})
	}
}
