package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "customerdb",
		Name:      "uploads_total",
		Help:      "Total number of spreadsheet uploads by target and result.",
	}, []string{"target", "result"})

	recordsCommittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "customerdb",
		Name:      "records_committed_total",
		Help:      "Total number of records committed by ingestion.",
	}, []string{"target"})

	chunkDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "customerdb",
		Name:      "chunk_write_duration_seconds",
		Help:      "Latency of one chunk transaction.",
		Buckets: []float64{
			0.001, 0.005, 0.01, 0.05,
			0.1, 0.5, 1, 5,
		},
	}, []string{"target", "result"})
)

// 未判定のアップロードに使うラベル
const unknownTarget = "unknown"

func targetLabel(target string) string {
	if target == "" {
		return unknownTarget
	}
	return target
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordUpload アップロード 1 件の結果を記録する
func RecordUpload(target string, err error) {
	uploadsTotal.WithLabelValues(targetLabel(target), resultLabel(err)).Inc()
}

// RecordCommitted 確定した件数を加算する
func RecordCommitted(target string, n int) {
	if n <= 0 {
		return
	}
	recordsCommittedTotal.WithLabelValues(targetLabel(target)).Add(float64(n))
}

// ObserveChunk チャンク書込みの所要時間を記録する
func ObserveChunk(target string, d time.Duration, err error) {
	chunkDuration.WithLabelValues(targetLabel(target), resultLabel(err)).Observe(d.Seconds())
}
