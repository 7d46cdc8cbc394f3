package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/enginesniff/enginesniff/internal/classify"
	"github.com/enginesniff/enginesniff/internal/report"
)

type identifyRequest struct {
	Files *[]string `json:"files"`
}

type engineSummary struct {
	Name       string `json:"name"`
	Signatures int    `json:"signatures"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, Banner)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleEngines(w http.ResponseWriter, r *http.Request) {
	out := make([]engineSummary, 0, len(s.engines))
	for _, e := range s.engines {
		out = append(out, engineSummary{Name: e.Name, Signatures: len(e.Signatures)})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	var req identifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.reject(w, http.StatusRequestEntityTooLarge, errors.New("request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes"))
			return
		}
		s.reject(w, http.StatusBadRequest, errors.New("malformed JSON body: "+err.Error()))
		return
	}
	if req.Files == nil {
		s.reject(w, http.StatusUnprocessableEntity, errors.New(`missing field "files"`))
		return
	}

	explain, _ := strconv.ParseBool(r.URL.Query().Get("explain"))
	start := time.Now()
	rep := classify.Evaluate(*req.Files, s.engines)
	elapsed := time.Since(start)

	s.metrics.identifications.WithLabelValues(rep.Result.Engine).Inc()
	s.metrics.filesListed.Observe(float64(len(*req.Files)))
	s.metrics.duration.Observe(elapsed.Seconds())
	s.logger.Debug("identified",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("engine", rep.Result.Engine),
		slog.Float64("confidence", rep.Result.Confidence),
		slog.Int("files", len(*req.Files)),
	)
	respondJSON(w, http.StatusOK, report.NewOutput(rep, explain))
}

func (s *Server) reject(w http.ResponseWriter, status int, err error) {
	s.metrics.rejected.WithLabelValues(strconv.Itoa(status)).Inc()
	respondError(w, status, err)
}
