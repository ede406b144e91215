package handlers

import (
	"log"
	"net/http"
	"time"

	"storemon/app/internal/artifact"
	"storemon/app/internal/report"
)

// SetupRoutes configures all HTTP routes and middlewares
func SetupRoutes(gen *report.Generator, artifacts *artifact.Store) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /trigger_report", HandleTriggerReport(gen))
	mux.HandleFunc("GET /get_report/{report_id}", HandleGetReport(gen, artifacts))
	mux.HandleFunc("GET /download_report/{report_id}", HandleDownloadReport(artifacts))

	return RequestLog(mux)
}

// RequestLog logs every request with its status and latency
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Nothing here accepts a body beyond a trigger request.
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		t0 := time.Now()
		next.ServeHTTP(rec, r)
		log.Printf("%s %s -> %d (%dms)", r.Method, r.URL.Path, rec.code, time.Since(t0).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}
