package domain

import "time"

// Escalation thresholds in whole days overdue. The highest matching threshold
// applies; escalation levels only ever increase.
const (
	escalateLevel1AfterDays = 2
	escalateLevel2AfterDays = 5
	escalateLevel3AfterDays = 10
)

// Escalate raises the escalation level of open auto-generated follow-ups that
// have aged past a threshold and returns the changed subset. The due date of
// an escalated task is reset to today so the "today/overdue" dashboard
// buckets stay accurate without rewriting history. Re-running Escalate on an
// already-escalated, still-overdue task is a no-op.
func Escalate(openAutoFollowUps []FollowUp, today time.Time) []FollowUp {
	today = Day(today)

	changed := make([]FollowUp, 0)
	for _, task := range openAutoFollowUps {
		if !task.Open() || !task.AutoGenerated {
			continue
		}

		overdueDays := daysBetween(Day(task.DueDate), today)

		next := task
		switch {
		case overdueDays >= escalateLevel3AfterDays && task.EscalationLevel < 3:
			next.EscalationLevel = 3
			next.Priority = PriorityOverdue
		case overdueDays >= escalateLevel2AfterDays && task.EscalationLevel < 2:
			next.EscalationLevel = 2
			next.Priority = PriorityHigh
		case overdueDays >= escalateLevel1AfterDays && task.EscalationLevel < 1:
			next.EscalationLevel = 1
			next.Priority = PriorityHigh
		default:
			continue
		}

		next.DueDate = today
		changed = append(changed, next)
	}

	return changed
}

// DaysOverdue returns how many whole days the due date lies in the past,
// zero when it is today or later.
func DaysOverdue(dueDate, today time.Time) int {
	days := daysBetween(Day(dueDate), Day(today))
	if days < 0 {
		return 0
	}
	return days
}

// daysBetween returns the floor of whole days from a to b (negative when b
// precedes a).
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
