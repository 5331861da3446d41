package forms

import (
	"github.com/garyjia/erp-forms/internal/domain/entity"
	"github.com/garyjia/erp-forms/internal/form"
)

// Job posting field names
const (
	JobTitle          = "title"
	JobDepartment     = "department"
	JobEmploymentType = "employment_type"
	JobOpenings       = "openings"
	JobPostingDate    = "posting_date"
	JobClosingDate    = "closing_date"
	JobDescription    = "description"
	JobRequirements   = "requirements"
)

func jobPostingModel() *form.Model {
	return form.MustModel(entity.FormJobPosting, "Job Posting",
		[]form.Field{
			{Name: JobTitle, Label: "Job title", Kind: form.KindText, Required: true},
			{Name: JobDepartment, Label: "Department", Kind: form.KindEnum, Required: true, Lookup: entity.RefDepartments},
			{
				Name: JobEmploymentType, Label: "Employment type", Kind: form.KindEnum, Required: true,
				Options: []string{"full-time", "part-time", "contract", "internship"},
				Default: form.Literal("full-time"),
			},
			{Name: JobOpenings, Label: "Openings", Kind: form.KindNumber, Required: true, Min: form.GreaterThan(0), Default: form.Literal(1.0)},
			{Name: JobPostingDate, Label: "Posting date", Kind: form.KindDate, Required: true, Default: form.Today},
			{Name: JobClosingDate, Label: "Closing date", Kind: form.KindDate, Required: true},
			{Name: JobDescription, Label: "Description", Kind: form.KindText},
			{Name: JobRequirements, Label: "Requirements", Kind: form.KindTextList, Required: true, Default: form.OneRow},
		},
		nil,
		form.DateOrder(JobPostingDate, JobClosingDate, true, "Closing date must be after the posting date"),
	)
}
