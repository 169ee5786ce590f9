package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"gocausal/adapters/render"
	"gocausal/app"
	"gocausal/domain/causal"
	"gocausal/domain/core"
	"gocausal/domain/dataset"
	"gocausal/internal/errors"
	"gocausal/internal/mechanism"
	"gocausal/internal/report"
	"gocausal/ports"
)

// DiscoverRequest is the body of POST /api/discover
type DiscoverRequest struct {
	Label     string               `json:"label"`
	Columns   []string             `json:"columns"`
	Rows      [][]float64          `json:"rows"`
	Variables []string             `json:"variables,omitempty"`
	Tiers     causal.TemporalTiers `json:"tiers,omitempty"`
	Algorithm string               `json:"algorithm,omitempty"`
	PC        *PCParams            `json:"pc,omitempty"`
	GES       *GESParams           `json:"ges,omitempty"`
}

// PCParams overrides the server's PC defaults
type PCParams struct {
	Alpha          *float64 `json:"alpha,omitempty"`
	MaxDepth       *int     `json:"max_depth,omitempty"`
	UnboundedDepth *bool    `json:"unbounded_depth,omitempty"`
}

// GESParams overrides the server's GES defaults
type GESParams struct {
	MaxIter *int  `json:"max_iter,omitempty"`
	Workers *int  `json:"workers,omitempty"`
	Acyclic *bool `json:"acyclic,omitempty"`
}

// DiscoverResponse lists the runs of one request
type DiscoverResponse struct {
	Runs []*causal.Run `json:"runs"`
}

// MechanismsResponse pairs a run id with its analysis
type MechanismsResponse struct {
	RunID    core.RunID          `json:"run_id"`
	Analysis *mechanism.Analysis `json:"analysis"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, errors.NotFound("route "+r.Method+" "+r.URL.Path))
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var body DiscoverRequest
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
				Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
				Code:  errors.CodeInvalidInput,
			})
			return
		}
		s.writeError(w, errors.InvalidInput(fmt.Sprintf("decode request: %v", err)))
		return
	}

	req, err := s.toDiscoveryRequest(body)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.fits.Acquire(r.Context(), 1); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "request cancelled while waiting for a fit slot"})
		return
	}
	defer s.fits.Release(1)

	runs, err := s.service.Discover(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, DiscoverResponse{Runs: runs})
}

func (s *Server) toDiscoveryRequest(body DiscoverRequest) (app.DiscoveryRequest, error) {
	algorithms, err := app.ParseAlgorithms(body.Algorithm)
	if err != nil {
		return app.DiscoveryRequest{}, err
	}
	data, err := dataset.NewMatrix(body.Columns, body.Rows)
	if err != nil {
		return app.DiscoveryRequest{}, err
	}

	pc := s.defaults.PC()
	if body.PC != nil {
		if body.PC.Alpha != nil {
			pc.Alpha = *body.PC.Alpha
		}
		if body.PC.MaxDepth != nil {
			pc.MaxConditioningSetSize = *body.PC.MaxDepth
		}
		if body.PC.UnboundedDepth != nil {
			pc.UnboundedDepth = *body.PC.UnboundedDepth
		}
	}

	ges := s.defaults.GES()
	if body.GES != nil {
		if body.GES.MaxIter != nil {
			ges.MaxIter = *body.GES.MaxIter
		}
		if body.GES.Workers != nil {
			ges.Workers = *body.GES.Workers
		}
		if body.GES.Acyclic != nil {
			ges.Acyclic = *body.GES.Acyclic
		}
	}

	return app.DiscoveryRequest{
		Label:      body.Label,
		Data:       data,
		Variables:  body.Variables,
		Tiers:      body.Tiers,
		Algorithms: algorithms,
		PC:         pc,
		GES:        ges,
	}, nil
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ports.RunFilter{
		Algorithm: causal.Algorithm(q.Get("algorithm")),
		Label:     q.Get("label"),
		Limit:     queryInt(q.Get("limit"), 50),
		Offset:    queryInt(q.Get("offset"), 0),
	}
	if filter.Algorithm != "" && !filter.Algorithm.Valid() {
		s.writeError(w, core.NewInputError("unknown algorithm %q", filter.Algorithm))
		return
	}

	runs, err := s.service.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*causal.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs, "count": len(runs)})
}

// loadRun resolves the {id} parameter, writing the error response itself
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request, param string) (*causal.Run, bool) {
	id, err := core.ParseRunID(chi.URLParam(r, param))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	run, err := s.service.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return run, true
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r, "id")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleMechanisms(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r, "id")
	if !ok {
		return
	}
	_, analysis, err := s.service.Mechanisms(r.Context(), run.ID, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MechanismsResponse{RunID: run.ID, Analysis: analysis})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	a, ok := s.loadRun(w, r, "id")
	if !ok {
		return
	}
	b, ok := s.loadRun(w, r, "other")
	if !ok {
		return
	}
	cmp, err := s.service.Compare(r.Context(), a.ID, b.ID, r.URL.Query().Get("prefix"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleGraphDOT(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r, "id")
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(render.ToDOT(run.Graph, graphOptions(run))))
}

func (s *Server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	run, ok := s.loadRun(w, r, "id")
	if !ok {
		return
	}
	svg, err := render.RenderSVG(r.Context(), render.ToDOT(run.Graph, graphOptions(run)))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	run, analysis, ok := s.loadAnalysis(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report.HTML(run, analysis))
}

func (s *Server) loadAnalysis(w http.ResponseWriter, r *http.Request) (*causal.Run, *mechanism.Analysis, bool) {
	run, ok := s.loadRun(w, r, "id")
	if !ok {
		return nil, nil, false
	}
	_, analysis, err := s.service.Mechanisms(r.Context(), run.ID, nil)
	if err != nil {
		s.writeError(w, err)
		return nil, nil, false
	}
	return run, analysis, true
}

func graphOptions(run *causal.Run) render.Options {
	title := string(run.Algorithm)
	if run.Label != "" {
		title = run.Label + " (" + title + ")"
	}
	return render.Options{Title: title, Tiers: run.Tiers}
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
