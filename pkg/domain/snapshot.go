package domain

// MindExperienceSnapshot is the read-only, caller-supplied view of the user's
// world. The interpreter resolves every entity reference against it and never
// queries storage itself.
type MindExperienceSnapshot struct {
	Expenses ExpenseContext `json:"expenses"`
	Budget   BudgetContext  `json:"budget"`
	Flow     FlowContext    `json:"flow"`
	Shares   ShareContext   `json:"shares"`
}

// ExpenseContext lists the expense groups the user participates in.
type ExpenseContext struct {
	Groups []ExpenseGroup `json:"groups"`
}

// ExpenseGroup is one shared-expense group. Balance fields are optional and
// informational; resolution only reads ID, Name and Currency.
type ExpenseGroup struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Currency       string `json:"currency"`
	YouOweMinor    int64  `json:"youOweMinor,omitempty"`
	OwedToYouMinor int64  `json:"owedToYouMinor,omitempty"`
	MemberCount    int    `json:"memberCount,omitempty"`
}

// BudgetContext carries the user's budget documents and the active one.
type BudgetContext struct {
	ActiveBudgetID string           `json:"activeBudgetId,omitempty"`
	Documents      []BudgetDocument `json:"documents"`
	Currency       string           `json:"currency,omitempty"`
}

// BudgetDocument is one budget the user maintains.
type BudgetDocument struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Currency string `json:"currency,omitempty"`
}

// FlowContext describes the user's planning state.
type FlowContext struct {
	Today         *FlowPlan  `json:"today,omitempty"`
	Tomorrow      *FlowPlan  `json:"tomorrow,omitempty"`
	UpcomingTasks []FlowTask `json:"upcomingTasks,omitempty"`
}

// FlowPlan is the planned task list for one day.
type FlowPlan struct {
	DateKey  string     `json:"dateKey"`
	Timezone string     `json:"timezone,omitempty"`
	Tasks    []FlowTask `json:"tasks"`
}

// FlowTask is one scheduled or backlog task.
type FlowTask struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	EstimateMinutes int    `json:"estimateMinutes,omitempty"`
	ScheduledStart  string `json:"scheduledStart,omitempty"`
	ScheduledEnd    string `json:"scheduledEnd,omitempty"`
	Status          string `json:"status,omitempty"`
}

// ShareContext lists recently shared links.
type ShareContext struct {
	Recent []SharedLink `json:"recent,omitempty"`
}

// SharedLink is one shared artifact reference.
type SharedLink struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// FirstGroup returns the first expense group in the snapshot, or nil when the
// user has none.
func (s *MindExperienceSnapshot) FirstGroup() *ExpenseGroup {
	if s == nil || len(s.Expenses.Groups) == 0 {
		return nil
	}
	return &s.Expenses.Groups[0]
}
