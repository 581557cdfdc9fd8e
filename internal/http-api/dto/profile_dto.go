package dto

// UpdateProfileRequest: owner edit of the medical profile. Pointer fields
// distinguish "leave unchanged" from "set to zero value".
type UpdateProfileRequest struct {
	FullName        *string `json:"full_name,omitempty"`
	Age             *int    `json:"age,omitempty"`
	ContactPhone    *string `json:"contact_phone,omitempty"`
	BloodGroup      *string `json:"blood_group,omitempty"`
	Organ           *string `json:"organ,omitempty"`
	HealthCondition *string `json:"health_condition,omitempty"`
	Available       *bool   `json:"available,omitempty"`
}

// SetStatusRequest: admin verification decision
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending Verified Rejected"`
}
