package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// counters are process-wide; the HTTP layer and the transcription hook both feed them.
var counters struct {
	requests      atomic.Uint64
	inFlight      atomic.Int64
	clientErrors  atomic.Uint64
	serverErrors  atomic.Uint64
	analyses      atomic.Uint64
	analysesFail  atomic.Uint64
	transcribed   atomic.Uint64
	transcribeErr atomic.Uint64
}

var startedAt = time.Now()

// Snapshot is the /metrics payload.
type Snapshot struct {
	Requests             uint64  `json:"requests_total"`
	InFlight             int64   `json:"requests_in_flight"`
	ClientErrors         uint64  `json:"requests_4xx"`
	ServerErrors         uint64  `json:"requests_5xx"`
	Analyses             uint64  `json:"analyses_total"`
	AnalysesFailed       uint64  `json:"analyses_failed"`
	Transcriptions       uint64  `json:"transcriptions_total"`
	TranscriptionsFailed uint64  `json:"transcriptions_failed"`
	UptimeSeconds        float64 `json:"uptime_seconds"`
	Goroutines           int     `json:"goroutines"`
	HeapAllocBytes       uint64  `json:"heap_alloc_bytes"`
	NumGC                uint32  `json:"num_gc"`
}

// RecordAnalysis counts one model call made for an analysis.
func RecordAnalysis(err error) {
	counters.analyses.Add(1)
	if err != nil {
		counters.analysesFail.Add(1)
	}
}

// RecordTranscription counts one finished provider call, foreground or background.
func RecordTranscription(err error) {
	counters.transcribed.Add(1)
	if err != nil {
		counters.transcribeErr.Add(1)
	}
}

func GetMetrics() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return Snapshot{
		Requests:             counters.requests.Load(),
		InFlight:             counters.inFlight.Load(),
		ClientErrors:         counters.clientErrors.Load(),
		ServerErrors:         counters.serverErrors.Load(),
		Analyses:             counters.analyses.Load(),
		AnalysesFailed:       counters.analysesFail.Load(),
		Transcriptions:       counters.transcribed.Load(),
		TranscriptionsFailed: counters.transcribeErr.Load(),
		UptimeSeconds:        time.Since(startedAt).Seconds(),
		Goroutines:           runtime.NumGoroutine(),
		HeapAllocBytes:       mem.HeapAlloc,
		NumGC:                mem.NumGC,
	}
}

// MetricsMiddleware counts requests by outcome class.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		counters.requests.Add(1)
		counters.inFlight.Add(1)
		defer counters.inFlight.Add(-1)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		switch {
		case rw.statusCode >= 500:
			counters.serverErrors.Add(1)
		case rw.statusCode >= 400:
			counters.clientErrors.Add(1)
		}
	})
}

func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
