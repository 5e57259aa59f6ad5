package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"sales-dashboard/internal/dashboard"
	"sales-dashboard/internal/render"
	"sales-dashboard/internal/sales"
)

type regionOption struct {
	Value   string
	Label   string
	Checked bool
}

type pageData struct {
	Title       string
	Heading     string
	Description string
	Regions     []regionOption
	View        dashboard.View
	ChartURL    string
	Error       string
}

type regionRequest struct {
	Region string `json:"region"`
}

type errorResponse struct {
	Error string         `json:"error"`
	View  dashboard.View `json:"view"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.acquire(w, r)

	var (
		view      dashboard.View
		opts      dashboard.Options
		selectErr error
	)
	sess.with(func(c *dashboard.Controller) {
		opts = c.Options()
		if values, ok := r.URL.Query()["region"]; ok {
			view, selectErr = c.Select(strings.Join(values, ","))
			return
		}
		view = c.View()
	})

	data := s.pageData(view, opts)
	status := http.StatusOK
	if selectErr != nil {
		status = http.StatusBadRequest
		data.Error = fmt.Sprintf("Unknown region. Choose one of: %s.", regionList())
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		s.logger.Error().Err(err).Msg("render dashboard template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.acquire(w, r)
	var view dashboard.View
	sess.with(func(c *dashboard.Controller) {
		view = c.View()
	})
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.acquire(w, r)

	var req regionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	var (
		view dashboard.View
		err  error
	)
	sess.with(func(c *dashboard.Controller) {
		view, err = c.Select(req.Region)
	})
	if err != nil {
		if errors.Is(err, sales.ErrInvalidFilter) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), View: view})
			return
		}
		s.logger.Error().Err(err).Msg("region selection failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	format, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	sess := s.sessions.acquire(w, r)
	var spec dashboard.ChartSpec
	sess.with(func(c *dashboard.Controller) {
		spec = c.View().Chart
	})

	var buf bytes.Buffer
	if err := render.Chart(&buf, spec, format, s.opts.ChartSize); err != nil {
		if errors.Is(err, render.ErrNoData) {
			http.Error(w, "no sales data for the selected region", http.StatusUnprocessableEntity)
			return
		}
		s.logger.Error().Err(err).Str("format", string(format)).Msg("render chart")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"records":  s.dataset.Len(),
		"sessions": s.sessions.count(),
	})
}

func (s *Server) pageData(view dashboard.View, opts dashboard.Options) pageData {
	regions := make([]regionOption, 0, len(sales.Regions))
	for _, r := range sales.Regions {
		regions = append(regions, regionOption{
			Value:   string(r),
			Label:   r.Label(),
			Checked: r == view.Filter.Region,
		})
	}
	return pageData{
		Title:       s.opts.Title,
		Heading:     fmt.Sprintf("Sales Before and After %s (%s)", opts.EventName, opts.Cutoff.Format("January 2, 2006")),
		Description: fmt.Sprintf("This dashboard visualizes daily sales to analyze the impact of the %s.", strings.ToLower(opts.EventName)),
		Regions:     regions,
		View:        view,
		ChartURL:    "/chart.svg?region=" + string(view.Filter.Region),
	}
}

func regionList() string {
	names := make([]string, 0, len(sales.Regions))
	for _, r := range sales.Regions {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
