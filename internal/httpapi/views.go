package httpapi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/learnflow/learnflow/internal/identity"
	"github.com/learnflow/learnflow/internal/instructor"
	"github.com/learnflow/learnflow/internal/mastery"
	"github.com/learnflow/learnflow/internal/struggle"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := s.deps.Catalog.ListModules(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mastery.OrderModules(modules))
}

func (s *Server) handleGetModule(w http.ResponseWriter, r *http.Request) {
	module, err := s.deps.Catalog.GetModule(r.Context(), r.PathValue("moduleId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, module)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, u identity.User) {
	modules, err := s.deps.Catalog.ListModules(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := s.deps.Progress.GetProgress(r.Context(), u.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mastery.BuildDashboard(modules, report, s.deps.Thresholds))
}

// struggles lists alerts for one learner when ?user_id= is given, otherwise
// for everyone.
func (s *Server) struggles(r *http.Request) ([]mastery.StruggleClassification, error) {
	var (
		alerts []struggle.Alert
		err    error
	)
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		alerts, err = s.deps.Struggles.ListUserStruggles(r.Context(), userID)
	} else {
		alerts, err = s.deps.Struggles.ListStruggles(r.Context())
	}
	if err != nil {
		return nil, err
	}

	out := make([]mastery.StruggleClassification, 0, len(alerts))
	for _, a := range alerts {
		if a.Resolved && r.URL.Query().Get("include_resolved") != "true" {
			continue
		}
		out = append(out, mastery.ClassifyStruggle(a))
	}
	return out, nil
}

func (s *Server) handleStruggles(w http.ResponseWriter, r *http.Request, _ identity.User) {
	rows, err := s.struggles(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStrugglesExport(w http.ResponseWriter, r *http.Request, _ identity.User) {
	rows, err := s.struggles(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := instructor.WriteWorkbook(&buf, rows); err != nil {
		writeError(w, fmt.Errorf("write workbook: %w", err))
		return
	}
	name := fmt.Sprintf("struggles-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) handleStrugglesLive(w http.ResponseWriter, r *http.Request, _ identity.User) {
	if s.deps.Feed == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "live feed disabled"})
		return
	}
	instructor.LiveHandler(s.deps.Feed).ServeHTTP(w, r)
}
