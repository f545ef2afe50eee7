// Package views derives display state from a session snapshot. Every function is
// pure and is recomputed on each render.
package views

import (
	"sort"
	"strings"

	"jobboard-portal/internal/models"
)

// Action is the single affordance a job row may offer.
type Action string

const (
	ActionNone     Action = ""
	ActionApply    Action = "apply"
	ActionWithdraw Action = "withdraw"
)

const (
	LabelApply    = "Apply Now"
	LabelEnded    = "Job Ended"
	LabelWithdraw = "Withdraw Application"
)

// Display is the effective display state of one job for the viewer.
type Display struct {
	Badge    string
	Action   Action
	Label    string
	Disabled bool
}

// JobDisplay combines the job's lifecycle with the viewer's application, if any.
// Jobs that are not active never get the apply action.
func JobDisplay(job models.Job, app *models.Application) Display {
	if app == nil {
		if job.AcceptsApplications() {
			return Display{Action: ActionApply, Label: LabelApply}
		}
		return Display{Label: LabelEnded, Disabled: true}
	}

	badge := string(app.Status)
	if app.Status == models.ApplicationApplied && job.AcceptsApplications() {
		return Display{Badge: badge, Action: ActionWithdraw, Label: LabelWithdraw}
	}
	return Display{Badge: badge, Label: statusLabel(app.Status), Disabled: true}
}

func statusLabel(status models.ApplicationStatus) string {
	switch status {
	case models.ApplicationApplied:
		return "Applied"
	case models.ApplicationAccepted:
		return "Accepted"
	case models.ApplicationRejected:
		return "Rejected"
	case models.ApplicationDone:
		return "Completed"
	default:
		if status == "" {
			return "Unknown"
		}
		return strings.ToUpper(string(status[:1])) + string(status[1:])
	}
}

// JobRow pairs a job with its display state.
type JobRow struct {
	Job         models.Job
	Application *models.Application
	Display     Display
}

// JobRows merges the job collection with the applied-jobs mapping, keeping the
// backend's order.
func JobRows(jobs []models.Job, applied map[int64]models.Application) []JobRow {
	rows := make([]JobRow, 0, len(jobs))
	for _, job := range jobs {
		var app *models.Application
		if a, ok := applied[job.ID]; ok {
			app = &a
		}
		rows = append(rows, JobRow{
			Job:         job,
			Application: app,
			Display:     JobDisplay(job, app),
		})
	}
	return rows
}

// ApplicationRow is one line of the "my applications" page.
type ApplicationRow struct {
	Application models.Application
	Job         *models.Job
	CanRate     bool
}

// ApplicationRows lists the viewer's applications ordered like the job listing,
// followed by applications for jobs outside the current listing by job id.
func ApplicationRows(jobs []models.Job, applied map[int64]models.Application) []ApplicationRow {
	rows := make([]ApplicationRow, 0, len(applied))
	seen := make(map[int64]bool, len(applied))
	for i := range jobs {
		app, ok := applied[jobs[i].ID]
		if !ok {
			continue
		}
		job := jobs[i]
		rows = append(rows, ApplicationRow{Application: app, Job: &job, CanRate: canRate(app)})
		seen[app.JobID] = true
	}

	var rest []models.Application
	for id, app := range applied {
		if !seen[id] {
			rest = append(rest, app)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].JobID < rest[j].JobID })
	for _, app := range rest {
		rows = append(rows, ApplicationRow{Application: app, CanRate: canRate(app)})
	}
	return rows
}

func canRate(app models.Application) bool {
	return app.Status == models.ApplicationDone && !app.Rated && app.ID != 0
}
