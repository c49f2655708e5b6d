package dto

// UpsertStaffRequest creates or updates a staff member.
type UpsertStaffRequest struct {
	ID           string  `json:"id"`
	FullName     string  `json:"fullName" validate:"required"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Grade        string  `json:"grade" validate:"required"`
	Participates *bool   `json:"participates" validate:"required"`
}

// ParticipationRequest flips a staff member's supervision enrollment.
type ParticipationRequest struct {
	Participates *bool `json:"participates" validate:"required"`
}

// StaffListQuery filters the staff listing.
type StaffListQuery struct {
	Search       string `form:"search"`
	Grade        string `form:"grade"`
	Participates *bool  `form:"participates"`
	Page         int    `form:"page"`
	PageSize     int    `form:"pageSize"`
}

// UpsertGradeRequest creates or updates a grade and its quota ceiling.
type UpsertGradeRequest struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Ceiling int    `json:"ceiling" validate:"required,min=1,max=30"`
}

// CeilingRequest adjusts the quota ceiling of an existing grade.
type CeilingRequest struct {
	Ceiling int `json:"ceiling" validate:"required,min=1,max=30"`
}
