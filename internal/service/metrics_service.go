package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the intake API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	uploadsStaged   prometheus.Counter
	uploadBytes     prometheus.Counter
	imagesResized   prometheus.Counter
	documentsBuilt  *prometheus.CounterVec
	emailsSent      *prometheus.CounterVec
	emailSendTime   prometheus.Observer
	pixelHits       prometheus.Counter
	sweepDeleted    prometheus.Counter
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	uploadsStaged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uploads_staged_total",
		Help: "Total attachments staged",
	})

	uploadBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "uploads_staged_bytes_total",
		Help: "Total bytes of staged attachments",
	})

	imagesResized := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "images_resized_total",
		Help: "Total images adjusted by the normalizer",
	})

	documentsBuilt := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "documents_generated_total",
		Help: "Generated review documents by kind",
	}, []string{"kind"})

	emailsSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "emails_sent_total",
		Help: "Outbound emails by result",
	}, []string{"result"})

	emailSendTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "email_send_duration_seconds",
		Help:    "Time spent delivering one email",
		Buckets: prometheus.DefBuckets,
	})

	pixelHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tracking_pixel_hits_total",
		Help: "Open-tracking pixel requests",
	})

	sweepDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "staging_sweep_deleted_total",
		Help: "Stale staged files removed by the sweeper",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, uploadsStaged, uploadBytes,
		imagesResized, documentsBuilt, emailsSent, emailSendTime, pixelHits,
		sweepDeleted, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		uploadsStaged:   uploadsStaged,
		uploadBytes:     uploadBytes,
		imagesResized:   imagesResized,
		documentsBuilt:  documentsBuilt,
		emailsSent:      emailsSent,
		emailSendTime:   emailSendTime,
		pixelHits:       pixelHits,
		sweepDeleted:    sweepDeleted,
	}
}

// Handler exposes the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveRequest records one handled HTTP request.
func (s *MetricsService) ObserveRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveUpload records one staged attachment.
func (s *MetricsService) ObserveUpload(sizeBytes int64) {
	s.uploadsStaged.Inc()
	s.uploadBytes.Add(float64(sizeBytes))
}

// ObserveResized records one image adjusted by the normalizer.
func (s *MetricsService) ObserveResized() {
	s.imagesResized.Inc()
}

// ObserveDocument records one generated artifact ("summary" or "merge").
func (s *MetricsService) ObserveDocument(kind string) {
	s.documentsBuilt.WithLabelValues(kind).Inc()
}

// ObserveEmail records one send attempt.
func (s *MetricsService) ObserveEmail(ok bool, duration time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	s.emailsSent.WithLabelValues(result).Inc()
	s.emailSendTime.Observe(duration.Seconds())
}

// ObservePixelHit records one tracking-pixel request.
func (s *MetricsService) ObservePixelHit() {
	s.pixelHits.Inc()
}

// ObserveSweep records files removed by the stale-staging sweep.
func (s *MetricsService) ObserveSweep(deleted int) {
	s.sweepDeleted.Add(float64(deleted))
}
