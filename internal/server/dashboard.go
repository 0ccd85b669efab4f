package server

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadlift/leadlift/internal/abtest"
	"github.com/leadlift/leadlift/internal/dashboard"
	"github.com/leadlift/leadlift/internal/scoring"
)

// Dashboard template data structures
type layoutData struct {
	Title   string
	CSS     template.CSS
	Content template.HTML
}

type funnelRow struct {
	Stage string
	Count int
}

type testSummary struct {
	ID             string
	Name           string
	Status         string
	VariantCount   int
	Impressions    int
	ConversionRate string
	Goal           string
}

type overviewData struct {
	TotalLeads     int
	AvgScore       string
	QualifiedLeads int
	Funnel         []funnelRow
	TopEvents      []scoring.EventCount
	Tests          []testSummary
}

type testDetailVariant struct {
	Name        string
	Impressions int
	Conversions int
	RatePercent string
	CI          string
	Leading     bool
}

type testDetailData struct {
	Name              string
	Status            string
	Goal              string
	Variants          []testDetailVariant
	Significant       bool
	ConfidencePercent string
	Winner            string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	// Handle logout
	if r.URL.Query().Get("logout") == "1" {
		http.SetCookie(w, &http.Cookie{
			Name:   tokenCookieName,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	ctx := r.Context()

	analytics, err := s.scoring.Analytics(ctx)
	if err != nil {
		http.Error(w, "Failed to load analytics", http.StatusInternalServerError)
		return
	}

	funnel := make([]funnelRow, 0, len(scoring.Stages))
	for _, stage := range scoring.Stages {
		funnel = append(funnel, funnelRow{Stage: string(stage), Count: analytics.ByStage[stage]})
	}

	var tests []testSummary
	for _, t := range s.registry.List() {
		stats, _ := s.store.GetVariantStats(ctx, t.ID)

		impressions, conversions := 0, 0
		for _, vs := range stats {
			impressions += vs.Impressions
			conversions += vs.Conversions
		}

		rate := "0%"
		if impressions > 0 {
			rate = formatPercentage(float64(conversions) / float64(impressions) * 100)
		}

		tests = append(tests, testSummary{
			ID:             t.ID,
			Name:           t.Name,
			Status:         string(t.Status),
			VariantCount:   len(t.Variants),
			Impressions:    impressions,
			ConversionRate: rate,
			Goal:           t.ConversionGoal,
		})
	}

	s.renderDashboard(w, "Overview", "overview.html", overviewData{
		TotalLeads:     analytics.TotalLeads,
		AvgScore:       fmt.Sprintf("%.0f", analytics.AvgScore),
		QualifiedLeads: analytics.ByStage[scoring.StageQualified],
		Funnel:         funnel,
		TopEvents:      analytics.TopEvents,
		Tests:          tests,
	})
}

func (s *Server) handleDashboardTest(w http.ResponseWriter, r *http.Request) {
	testID := chi.URLParam(r, "testID")

	test := s.registry.Get(testID)
	if test == nil {
		http.NotFound(w, r)
		return
	}

	stats, err := s.store.GetVariantStats(r.Context(), testID)
	if err != nil {
		http.Error(w, "Failed to load stats", http.StatusInternalServerError)
		return
	}

	report := abtest.BuildReport(test, stats)

	variants := make([]testDetailVariant, len(report.Variants))
	for i, v := range report.Variants {
		ci := "N/A"
		if v.Impressions > 0 {
			ci = fmt.Sprintf("[%.1f%%, %.1f%%]", v.CILower*100, v.CIUpper*100)
		}

		variants[i] = testDetailVariant{
			Name:        v.Name,
			Impressions: v.Impressions,
			Conversions: v.Conversions,
			RatePercent: formatPercentage(v.Rate * 100),
			CI:          ci,
			Leading:     v.VariantID == report.Leading && len(report.Variants) > 1,
		}
	}

	winner := ""
	if v := test.Variant(report.Significance.Winner); v != nil {
		winner = v.Name
	}

	s.renderDashboard(w, test.Name, "test.html", testDetailData{
		Name:              test.Name,
		Status:            string(test.Status),
		Goal:              test.ConversionGoal,
		Variants:          variants,
		Significant:       report.Significance.IsSignificant,
		ConfidencePercent: formatPercentage(report.Significance.Confidence),
		Winner:            winner,
	})
}

func (s *Server) handleDashboardAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	analytics, err := s.scoring.Analytics(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load analytics")
		return
	}

	type apiTest struct {
		ID     string         `json:"id"`
		Name   string         `json:"name"`
		Status string         `json:"status"`
		Goal   string         `json:"conversion_goal,omitempty"`
		Report *abtest.Report `json:"report"`
	}

	tests := s.registry.List()
	apiTests := make([]apiTest, len(tests))
	for i, t := range tests {
		stats, err := s.store.GetVariantStats(ctx, t.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load stats")
			return
		}

		apiTests[i] = apiTest{
			ID:     t.ID,
			Name:   t.Name,
			Status: string(t.Status),
			Goal:   t.ConversionGoal,
			Report: abtest.BuildReport(t, stats),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"leads": analytics,
		"tests": apiTests,
	})
}

func (s *Server) renderDashboard(w http.ResponseWriter, title, contentTemplate string, data any) {
	cssBytes, err := dashboard.Assets.ReadFile("assets/style.css")
	if err != nil {
		http.Error(w, "Failed to load styles", http.StatusInternalServerError)
		return
	}

	contentTmpl, err := template.ParseFS(dashboard.Templates, "templates/"+contentTemplate)
	if err != nil {
		http.Error(w, "Failed to parse template", http.StatusInternalServerError)
		return
	}

	var contentBuf bytes.Buffer
	if err := contentTmpl.Execute(&contentBuf, data); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render template: %v", err), http.StatusInternalServerError)
		return
	}

	layoutTmpl, err := template.ParseFS(dashboard.Templates, "templates/layout.html")
	if err != nil {
		http.Error(w, "Failed to parse layout", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := layoutTmpl.Execute(w, layoutData{
		Title:   title,
		CSS:     template.CSS(cssBytes),
		Content: template.HTML(contentBuf.String()),
	}); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

func formatPercentage(p float64) string {
	if p < 0.01 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", p)
}
