package tracker

// Time entry approval states used by the tracker API.
const (
	StateDraft     = "draft"
	StateSubmitted = "submitted"
	StateApproved  = "approved"
	StateRejected  = "rejected"
)

type TimeEntry struct {
	ID        int64   `json:"id"`
	SpentDate string  `json:"spent_date"`
	Hours     float64 `json:"hours"`
	Notes     string  `json:"notes,omitempty"`
	ProjectID int64   `json:"project_id"`
	UserID    int64   `json:"user_id,omitempty"`
	Billable  bool    `json:"billable"`
	State     string  `json:"state,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

type TimeEntryList struct {
	TimeEntries  []TimeEntry `json:"time_entries"`
	TotalEntries int         `json:"total_entries"`
	Page         int         `json:"page"`
	TotalPages   int         `json:"total_pages"`
}

type TimeEntryListOptions struct {
	From      string // inclusive spent_date lower bound (YYYY-MM-DD)
	To        string // inclusive spent_date upper bound
	ProjectID int64
	State     string
	Page      int
	PerPage   int
}

type CreateTimeEntryInput struct {
	SpentDate string  `json:"spent_date"`
	Hours     float64 `json:"hours"`
	Notes     string  `json:"notes,omitempty"`
	ProjectID int64   `json:"project_id"`
	Billable  bool    `json:"billable"`
}

type UpdateTimeEntryInput struct {
	SpentDate *string  `json:"spent_date,omitempty"`
	Hours     *float64 `json:"hours,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
	ProjectID *int64   `json:"project_id,omitempty"`
	Billable  *bool    `json:"billable,omitempty"`
}

type Expense struct {
	ID        int64   `json:"id"`
	SpentDate string  `json:"spent_date"`
	Amount    float64 `json:"amount"`
	Category  string  `json:"category,omitempty"`
	Notes     string  `json:"notes,omitempty"`
	ProjectID int64   `json:"project_id"`
	UserID    int64   `json:"user_id,omitempty"`
	Billable  bool    `json:"billable"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

type ExpenseList struct {
	Expenses     []Expense `json:"expenses"`
	TotalEntries int       `json:"total_entries"`
	Page         int       `json:"page"`
	TotalPages   int       `json:"total_pages"`
}

type ExpenseListOptions struct {
	From      string
	To        string
	ProjectID int64
	Page      int
	PerPage   int
}

type CreateExpenseInput struct {
	SpentDate string  `json:"spent_date"`
	Amount    float64 `json:"amount"`
	Category  string  `json:"category,omitempty"`
	Notes     string  `json:"notes,omitempty"`
	ProjectID int64   `json:"project_id"`
	Billable  bool    `json:"billable"`
}

type UpdateExpenseInput struct {
	SpentDate *string  `json:"spent_date,omitempty"`
	Amount    *float64 `json:"amount,omitempty"`
	Category  *string  `json:"category,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
	ProjectID *int64   `json:"project_id,omitempty"`
	Billable  *bool    `json:"billable,omitempty"`
}

// Customer is a client record in the tracker API ("clients" on the wire).
type Customer struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Currency string `json:"currency,omitempty"`
	Address  string `json:"address,omitempty"`
	IsActive bool   `json:"is_active"`
}

type CustomerList struct {
	Customers    []Customer `json:"clients"`
	TotalEntries int        `json:"total_entries"`
	Page         int        `json:"page"`
	TotalPages   int        `json:"total_pages"`
}

type CreateCustomerInput struct {
	Name     string `json:"name"`
	Currency string `json:"currency,omitempty"`
	Address  string `json:"address,omitempty"`
}

type UpdateCustomerInput struct {
	Name     *string `json:"name,omitempty"`
	Currency *string `json:"currency,omitempty"`
	Address  *string `json:"address,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type Project struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	ClientID   int64   `json:"client_id"`
	HourlyRate float64 `json:"hourly_rate,omitempty"`
	Notes      string  `json:"notes,omitempty"`
	IsActive   bool    `json:"is_active"`
}

type ProjectList struct {
	Projects     []Project `json:"projects"`
	TotalEntries int       `json:"total_entries"`
	Page         int       `json:"page"`
	TotalPages   int       `json:"total_pages"`
}

type CreateProjectInput struct {
	Name       string  `json:"name"`
	ClientID   int64   `json:"client_id"`
	HourlyRate float64 `json:"hourly_rate,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

type UpdateProjectInput struct {
	Name       *string  `json:"name,omitempty"`
	ClientID   *int64   `json:"client_id,omitempty"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
	IsActive   *bool    `json:"is_active,omitempty"`
}
