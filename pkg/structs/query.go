package structs

type Query struct {
	// Limit caps the number of jobs returned; zero means no cap.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// Filters
	Statuses []Status `json:"statuses,omitempty"`
}

func (q *Query) Sanitize() {
	if q.Limit < 0 {
		q.Limit = 0
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if len(q.Statuses) == 0 {
		q.Statuses = nil
	}
}

// Matches reports whether a job passes the status filter.
func (q *Query) Matches(j *Job) bool {
	if q.Statuses == nil {
		return true
	}
	for _, s := range q.Statuses {
		if s == j.Status {
			return true
		}
	}
	return false
}
