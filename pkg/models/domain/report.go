package domain

import "time"

// Report represents a rendered page in a form the terminal reporter prints
type Report struct {
	Title    string
	Subtitle string
	Period   TimePeriod
	Sections []ReportSection
}

// TimePeriod represents the date range covered by the report's rows
type TimePeriod struct {
	Start time.Time
	End   time.Time
	Weeks int
}

// ReportSection represents one hydrated page section
type ReportSection struct {
	Title    string
	Sentence string
	Summary  map[string]interface{}
	Details  []ReportDetail
}

// ReportDetail represents one latest value within a section
type ReportDetail struct {
	Name        string
	Value       interface{}
	Unit        string
	Description string
}
