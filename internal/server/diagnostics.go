package server

import (
	"net/http"
	"time"

	"github.com/vibetube/vibetube/internal/httputil"
)

type diagnosticsReport struct {
	BackendURL   string        `json:"backend_url"`
	Reachable    bool          `json:"reachable"`
	LatencyMS    int64         `json:"latency_ms"`
	VideoCount   int           `json:"video_count"`
	Error        string        `json:"error,omitempty"`
	SampleStream string        `json:"sample_stream,omitempty"`
	Storage      *storageProbe `json:"storage,omitempty"`
}

type storageProbe struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	Error       string `json:"error,omitempty"`
}

// handleDiagnostics probes the backend list endpoint and, when storage is
// configured, the object behind the first listed video.
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	report := diagnosticsReport{BackendURL: s.backend.BaseURL()}

	start := time.Now()
	videos, err := s.backend.ListVideos(r.Context(), "")
	report.LatencyMS = time.Since(start).Milliseconds()

	if err != nil {
		report.Error = err.Error()
	} else {
		report.Reachable = true
		report.VideoCount = len(videos)
		if len(videos) > 0 {
			first := videos[0]
			report.SampleStream = s.streamURL(r.Context(), first.Filename)
			if s.objects != nil {
				probe := &storageProbe{Key: s.objects.Key(first.Filename)}
				size, contentType, err := s.objects.HeadObject(r.Context(), probe.Key)
				if err != nil {
					probe.Error = err.Error()
				} else {
					probe.Size = size
					probe.ContentType = contentType
				}
				report.Storage = probe
			}
		}
	}

	status := http.StatusOK
	if !report.Reachable {
		status = http.StatusBadGateway
	}

	if httputil.WantsJSON(r) {
		httputil.WriteJSON(w, status, report)
		return
	}

	render(w, diagnosticsPageTemplate, status, diagnosticsPageData{
		page: page{
			PageTitle: "Backend Test",
			Nonce:     httputil.NonceFromContext(r.Context()),
		},
		Report: report,
	})
}
