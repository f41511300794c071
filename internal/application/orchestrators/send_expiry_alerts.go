package orchestrators

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"yogao/internal/adapters/email"
	membershipStore "yogao/internal/adapters/storage/membership"
	studentStore "yogao/internal/adapters/storage/student"
	"yogao/internal/domain/dates"
	"yogao/internal/domain/membership"
)

// SendExpiryAlertsInput carries input for the orchestrator.
type SendExpiryAlertsInput struct {
	OperatorEmail string
}

// SendExpiryAlertsDeps holds dependencies for SendExpiryAlerts.
type SendExpiryAlertsDeps struct {
	StudentStore    studentStore.Store
	MembershipStore membershipStore.Store
	Sender          email.Sender
	Now             func() time.Time
}

// SendExpiryAlertsResult reports how many students were included.
type SendExpiryAlertsResult struct {
	Expiring  int
	MessageID string
}

// ExecuteSendExpiryAlerts mails the studio operator a digest of students
// whose pass ends within the expiring-soon window. Students have no email
// address on file, so the operator follows up by phone.
// PRE: OperatorEmail is a deliverable address
// POST: One digest email sent when any student is expiring; none otherwise
func ExecuteSendExpiryAlerts(ctx context.Context, input SendExpiryAlertsInput, deps SendExpiryAlertsDeps) (SendExpiryAlertsResult, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	today := dates.Day(now())

	students, err := deps.StudentStore.List(ctx, studentStore.ListFilter{})
	if err != nil {
		return SendExpiryAlertsResult{}, err
	}

	var rows []string
	for _, s := range students {
		ms, err := deps.MembershipStore.ListByStudentID(ctx, s.ID)
		if err != nil {
			return SendExpiryAlertsResult{}, err
		}
		summary := membership.Classify(today, ms)
		if summary.Status.Kind != membership.StatusExpiringSoon {
			continue
		}
		rows = append(rows, fmt.Sprintf(
			"<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td></tr>",
			html.EscapeString(s.Name),
			html.EscapeString(s.Phone),
			dates.Format(summary.Representative.EndDate),
			summary.Status.DaysRemaining,
		))
	}

	if len(rows) == 0 {
		slog.Info("expiry_alerts_skipped", "reason", "no expiring students")
		return SendExpiryAlertsResult{}, nil
	}

	body := "<h2>Passes expiring within " +
		fmt.Sprintf("%d", membership.ExpiringSoonWindowDays) + " days</h2>" +
		"<table><tr><th>Name</th><th>Phone</th><th>End date</th><th>Days left</th></tr>" +
		strings.Join(rows, "") + "</table>"

	result, err := deps.Sender.Send(ctx, email.SendRequest{
		To:      []string{input.OperatorEmail},
		Subject: fmt.Sprintf("%d passes expiring soon", len(rows)),
		HTML:    body,
	})
	if err != nil {
		return SendExpiryAlertsResult{Expiring: len(rows)}, err
	}

	slog.Info("expiry_alerts_sent", "expiring", len(rows), "message_id", result.MessageID)
	return SendExpiryAlertsResult{Expiring: len(rows), MessageID: result.MessageID}, nil
}
