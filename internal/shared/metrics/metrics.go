package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	submissionsStartedTotal   atomic.Uint64
	submissionsCompletedTotal atomic.Uint64
	submissionsFailedTotal    atomic.Uint64
	submissionsUnsavedTotal   atomic.Uint64

	visionRequestsTotal atomic.Uint64
	visionFailuresTotal atomic.Uint64
	chatRepliesTotal    atomic.Uint64
	chatFailuresTotal   atomic.Uint64
	photosStoredTotal   atomic.Uint64

	msBuckets          = []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000}
	submissionDuration = newHistogram(msBuckets)
	visionDuration     = newHistogram(msBuckets)
)

// IncSubmissionStarted counts a submission that passed validation.
func IncSubmissionStarted() { submissionsStartedTotal.Add(1) }

// IncSubmissionCompleted counts a submission that produced a response body.
func IncSubmissionCompleted() { submissionsCompletedTotal.Add(1) }

// IncSubmissionFailed counts a submission aborted by an upload or vision error.
func IncSubmissionFailed() { submissionsFailedTotal.Add(1) }

// IncSubmissionUnsaved counts a completed submission whose record could not be persisted.
func IncSubmissionUnsaved() { submissionsUnsavedTotal.Add(1) }

// IncPhotosStored adds n stored photos.
func IncPhotosStored(n int) {
	if n > 0 {
		photosStoredTotal.Add(uint64(n))
	}
}

// IncVisionRequest counts an outbound vision call.
func IncVisionRequest() { visionRequestsTotal.Add(1) }

// IncVisionFailure counts a failed vision call.
func IncVisionFailure() { visionFailuresTotal.Add(1) }

func IncChatReply()   { chatRepliesTotal.Add(1) }
func IncChatFailure() { chatFailuresTotal.Add(1) }

// ObserveSubmissionDuration records end-to-end submit latency.
func ObserveSubmissionDuration(d time.Duration) {
	submissionDuration.Observe(toMillis(d))
}

// ObserveVisionDuration records the latency of a single vision call.
func ObserveVisionDuration(d time.Duration) {
	visionDuration.Observe(toMillis(d))
}

func toMillis(d time.Duration) float64 {
	if d < 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "submissions_started_total", "Submissions accepted for processing", submissionsStartedTotal.Load())
	writeCounter(&buf, "submissions_completed_total", "Submissions answered with an analysis", submissionsCompletedTotal.Load())
	writeCounter(&buf, "submissions_failed_total", "Submissions aborted by upload or vision errors", submissionsFailedTotal.Load())
	writeCounter(&buf, "submissions_unsaved_total", "Submissions answered without a stored record", submissionsUnsavedTotal.Load())
	writeCounter(&buf, "photos_stored_total", "Photos written to the object store", photosStoredTotal.Load())
	writeCounter(&buf, "vision_requests_total", "Vision model requests", visionRequestsTotal.Load())
	writeCounter(&buf, "vision_failures_total", "Vision model failures", visionFailuresTotal.Load())
	writeCounter(&buf, "chat_replies_total", "Follow-up chat replies", chatRepliesTotal.Load())
	writeCounter(&buf, "chat_failures_total", "Follow-up chat failures", chatFailuresTotal.Load())
	writeHistogram(&buf, "submission_duration_ms", "Submission duration in milliseconds", submissionDuration.Snapshot())
	writeHistogram(&buf, "vision_duration_ms", "Vision call duration in milliseconds", visionDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket whose bound contains it; counts are
// accumulated at render time.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
