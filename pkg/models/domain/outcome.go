package domain

type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Outcome records what happened to one section during hydration.
type Outcome struct {
	Section  string
	Severity Severity
	Message  string
}

type HydrationReport struct {
	RunID    string
	Page     string
	Outcomes []Outcome
}

func (r *HydrationReport) Add(section string, severity Severity, msg string) {
	r.Outcomes = append(r.Outcomes, Outcome{Section: section, Severity: severity, Message: msg})
}

func (r HydrationReport) Warnings() []Outcome {
	return r.filter(SeverityWarning)
}

func (r HydrationReport) Errors() []Outcome {
	return r.filter(SeverityError)
}

// OK is true when no section ended in an error. Warnings are allowed.
func (r HydrationReport) OK() bool {
	return len(r.Errors()) == 0
}

// For returns the outcomes recorded for a section, in order.
func (r HydrationReport) For(section string) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Section == section {
			out = append(out, o)
		}
	}
	return out
}

func (r HydrationReport) filter(s Severity) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Severity == s {
			out = append(out, o)
		}
	}
	return out
}
