package twilio

// Status is a carrier call status.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusInitiated  Status = "initiated"
	StatusRinging    Status = "ringing"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusBusy       Status = "busy"
	StatusNoAnswer   Status = "no-answer"
	StatusCanceled   Status = "canceled"
)

// IsTerminal reports whether no further transition can follow s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusFailed, StatusBusy, StatusNoAnswer, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Call is the carrier's call record. Timestamps and duration are null until
// the call is answered, which decodes to empty strings.
type Call struct {
	SID          string `json:"sid"`
	To           string `json:"to"`
	From         string `json:"from"`
	Status       Status `json:"status"`
	Duration     string `json:"duration"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	ErrorCode    int    `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// CreateCallParams are the form values for a new outbound call.
type CreateCallParams struct {
	To          string
	From        string
	URL         string
	TimeoutSecs int
}
