package views

import "jobboard-portal/internal/models"

const (
	LabelSubscribe       = "Subscribe"
	LabelPendingApproval = "Pending Approval..."
	LabelCurrentPlan     = "Current Plan"
)

type PlanButton struct {
	Method   models.SubscriptionMethod
	Label    string
	Disabled bool
}

// PlanButtons derives one button per offered plan from the current subscription.
// A plan matches the subscription by its plan tier.
func PlanButtons(methods []models.SubscriptionMethod, sub *models.Subscription) []PlanButton {
	buttons := make([]PlanButton, 0, len(methods))
	for _, m := range methods {
		btn := PlanButton{Method: m, Label: LabelSubscribe}
		if sub != nil && sub.Plan == m.Plan {
			switch sub.Status {
			case models.SubscriptionPending:
				btn.Label = LabelPendingApproval
				btn.Disabled = true
			case models.SubscriptionActive:
				btn.Label = LabelCurrentPlan
				btn.Disabled = true
			}
		}
		buttons = append(buttons, btn)
	}
	return buttons
}
