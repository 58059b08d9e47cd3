package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	JobStatusPending   = "pending"
	JobStatusInterview = "interview"
	JobStatusDeclined  = "declined"

	JobTypeFullTime   = "full-time"
	JobTypePartTime   = "part-time"
	JobTypeInternship = "internship"
	JobTypeRemote     = "remote"

	DefaultJobLocation = "city"
)

// JobStatuses lists the known statuses in the order the stats summary
// reports them.
func JobStatuses() []string {
	return []string{JobStatusPending, JobStatusInterview, JobStatusDeclined}
}

func ValidJobStatus(status string) bool {
	switch status {
	case JobStatusPending, JobStatusInterview, JobStatusDeclined:
		return true
	}
	return false
}

func ValidJobType(jobType string) bool {
	switch jobType {
	case JobTypeFullTime, JobTypePartTime, JobTypeInternship, JobTypeRemote:
		return true
	}
	return false
}

// Job is one tracked job application. CreatedBy is stamped from the
// authenticated identity on creation and never taken from the client.
type Job struct {
	ID          string    `json:"id"`
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	JobLocation string    `json:"jobLocation"`
	JobStatus   string    `json:"jobStatus"`
	JobType     string    `json:"jobType"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// JobInput carries the client-editable job fields for create and update.
type JobInput struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	JobLocation string `json:"jobLocation,omitempty"`
	JobStatus   string `json:"jobStatus,omitempty"`
	JobType     string `json:"jobType,omitempty"`
}

func (in JobInput) Validate() error {
	if strings.TrimSpace(in.Company) == "" {
		return errors.New("company is required")
	}
	if strings.TrimSpace(in.Position) == "" {
		return errors.New("position is required")
	}
	if in.JobStatus != "" && !ValidJobStatus(in.JobStatus) {
		return fmt.Errorf("invalid job status: %s", in.JobStatus)
	}
	if in.JobType != "" && !ValidJobType(in.JobType) {
		return fmt.Errorf("invalid job type: %s", in.JobType)
	}
	return nil
}

// Normalized trims the text fields and substitutes the defaults for any
// omitted enum or location value.
func (in JobInput) Normalized() JobInput {
	in.Company = strings.TrimSpace(in.Company)
	in.Position = strings.TrimSpace(in.Position)
	in.JobLocation = strings.TrimSpace(in.JobLocation)
	if in.JobLocation == "" {
		in.JobLocation = DefaultJobLocation
	}
	if in.JobStatus == "" {
		in.JobStatus = JobStatusPending
	}
	if in.JobType == "" {
		in.JobType = JobTypeFullTime
	}
	return in
}

// Apply copies the input fields onto an existing record.
func (in JobInput) Apply(job Job) Job {
	job.Company = in.Company
	job.Position = in.Position
	job.JobLocation = in.JobLocation
	job.JobStatus = in.JobStatus
	job.JobType = in.JobType
	return job
}
