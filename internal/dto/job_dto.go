package dto

import "github.com/google/uuid"

type CreateJobInput struct {
	Title          string      `json:"title" binding:"required,min=3,max=255"`
	JobType        string      `json:"job_type"`
	JobTime        string      `json:"job_time"`
	Details        string      `json:"details"`
	Location       string      `json:"location"`
	IsRemote       bool        `json:"is_remote"`
	SalaryCurrency string      `json:"salary_currency"`
	SalaryLower    string      `json:"salary_lower"`
	SalaryUpper    string      `json:"salary_upper"`
	SalaryPublic   bool        `json:"salary_public"`
	DepartmentID   *uint       `json:"department_id"`
	HiringManagers []uuid.UUID `json:"hiring_managers"`
}

type UpdateJobInput struct {
	Title          *string `json:"title"`
	JobType        *string `json:"job_type"`
	JobTime        *string `json:"job_time"`
	Details        *string `json:"details"`
	Location       *string `json:"location"`
	IsRemote       *bool   `json:"is_remote"`
	SalaryCurrency *string `json:"salary_currency"`
	SalaryLower    *string `json:"salary_lower"`
	SalaryUpper    *string `json:"salary_upper"`
	SalaryPublic   *bool   `json:"salary_public"`
	Status         *string `json:"status" binding:"omitempty,oneof=Open Closed"`
}
