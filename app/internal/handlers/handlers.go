package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"storemon/app/internal/artifact"
	"storemon/app/internal/models"
	"storemon/app/internal/report"
)

// HandleTriggerReport starts a new report job and returns its id
func HandleTriggerReport(gen *report.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := gen.Trigger()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"status": models.ReportError,
				"detail": "failed to create report",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"report_id": id})
	}
}

// HandleGetReport reports a job's state. Unknown ids answer as Running:
// a poll cannot distinguish "never existed" from "still computing".
func HandleGetReport(gen *report.Generator, artifacts *artifact.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.Trim(r.PathValue("report_id"), "{}")

		status, found, err := gen.Status(id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"status": models.ReportError,
				"detail": "failed to read report status",
			})
			return
		}

		switch {
		case !found || status == models.ReportRunning:
			writeJSON(w, http.StatusAccepted, map[string]string{"status": models.ReportRunning})
		case status == models.ReportComplete:
			if !artifacts.Exists(id) {
				// Completed but the file is not visible yet; treat as
				// still in progress rather than failing the poll.
				writeJSON(w, http.StatusAccepted, map[string]string{"status": models.ReportRunning})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{
				"status":     models.ReportComplete,
				"report_url": "/download_report/" + id,
			})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"status": models.ReportError,
				"detail": "An error occurred while generating the report",
			})
		}
	}
}

// HandleDownloadReport serves a finished report as a CSV attachment
func HandleDownloadReport(artifacts *artifact.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.Trim(r.PathValue("report_id"), "{}")

		if !artifacts.Exists(id) {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Report file not found"})
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="report_`+id+`.csv"`)
		http.ServeFile(w, r, artifacts.Path(id))
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
