package reporter

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/kicadtime/kicadtime/internal/config"
	"github.com/kicadtime/kicadtime/internal/database"
	"github.com/kicadtime/kicadtime/internal/models"
)

// Heartbeats further apart than this indicate a break: the gap between
// them is not attributed to any project.
const gapTimeout = 15 * time.Minute

// Reporter aggregates the heartbeat journal into per-project tracked
// time.
type Reporter struct {
	config *config.Config
	repo   *database.Repository
}

// New creates a new reporter
func New(cfg *config.Config, repo *database.Repository) *Reporter {
	return &Reporter{
		config: cfg,
		repo:   repo,
	}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := r.getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	heartbeats, err := r.repo.GetHeartbeatsSince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to load heartbeats: %w", err)
	}

	summaries := summarize(heartbeats, period.End)

	var totalSeconds int64
	for i := range summaries {
		summaries[i].TotalMinutes = float64(summaries[i].TotalSeconds) / 60.0
		summaries[i].TotalHours = float64(summaries[i].TotalSeconds) / 3600.0
		totalSeconds += summaries[i].TotalSeconds
	}

	if totalSeconds > 0 {
		for i := range summaries {
			summaries[i].Percentage = (float64(summaries[i].TotalSeconds) / float64(totalSeconds)) * 100.0
		}
	}

	report := &models.Report{
		Period:       *period,
		Projects:     summaries,
		TotalSeconds: totalSeconds,
		TotalMinutes: float64(totalSeconds) / 60.0,
		TotalHours:   float64(totalSeconds) / 3600.0,
		GeneratedAt:  time.Now(),
	}

	return report, nil
}

// summarize walks the chronological heartbeat stream and attributes the
// gap between consecutive heartbeats to the earlier one's project,
// unless the gap exceeds the break timeout.
func summarize(heartbeats []*models.Heartbeat, end time.Time) []models.ProjectSummary {
	totals := make(map[string]int64)
	counts := make(map[string]int)

	for i, hb := range heartbeats {
		if hb.Timestamp.After(end) {
			break
		}
		counts[hb.Project]++

		if i+1 >= len(heartbeats) {
			continue
		}
		gap := heartbeats[i+1].Timestamp.Sub(hb.Timestamp)
		if gap > 0 && gap <= gapTimeout {
			totals[hb.Project] += int64(gap.Seconds())
		}
	}

	summaries := make([]models.ProjectSummary, 0, len(counts))
	for project, count := range counts {
		summaries = append(summaries, models.ProjectSummary{
			Project:        project,
			TotalSeconds:   totals[project],
			HeartbeatCount: count,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].TotalSeconds > summaries[j].TotalSeconds
	})

	return summaries
}

// getPeriod calculates the time range for the report
func (r *Reporter) getPeriod(periodType string) (*models.ReportPeriod, error) {
	now := time.Now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.Add(24 * time.Hour)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	output := fmt.Sprintf("KiCad Time Report - %s\n", report.Period.Type)
	output += fmt.Sprintf("Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	output += fmt.Sprintf("Total Time: %s\n\n", FormatRoundedUnit(report.TotalSeconds))

	if len(report.Projects) == 0 {
		output += "No KiCad activity recorded for this period.\n"
		return output
	}

	output += fmt.Sprintf("%-30s %10s %12s %10s\n", "Project", "Time", "Heartbeats", "Percent")
	output += fmt.Sprintf("%s\n", "--------------------------------------------------------------------")

	for _, p := range report.Projects {
		output += fmt.Sprintf("%-30s %10s %12d %9.1f%%\n",
			truncate(p.Project, 30),
			FormatRoundedUnit(p.TotalSeconds),
			p.HeartbeatCount,
			p.Percentage)
	}

	return output
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// FormatRoundedUnit renders a second count in its largest round unit.
func FormatRoundedUnit(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds > 3600 {
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	}
	return fmt.Sprintf("%dm", seconds/60)
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
