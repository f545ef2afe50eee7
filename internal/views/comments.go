package views

import "jobboard-portal/internal/models"

type CommentRow struct {
	Comment   models.Comment
	CanDelete bool
}

// CommentRows marks the viewer's own comments as deletable. A zero viewer id never
// matches.
func CommentRows(comments []models.Comment, viewerID int64) []CommentRow {
	rows := make([]CommentRow, 0, len(comments))
	for _, c := range comments {
		rows = append(rows, CommentRow{
			Comment:   c,
			CanDelete: viewerID != 0 && c.AuthorID == viewerID,
		})
	}
	return rows
}
