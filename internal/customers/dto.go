package customers

type CreateCustomerRequest struct {
	Name             string  `json:"name" validate:"required,max=255"`
	PrimaryPhone     string  `json:"primary_phone" validate:"required,max=50"`
	AdditionalPhones *string `json:"additional_phones,omitempty"`
}

type UpdateCustomerRequest struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,max=255"`
	PrimaryPhone     *string `json:"primary_phone,omitempty" validate:"omitempty,max=50"`
	AdditionalPhones *string `json:"additional_phones,omitempty"`
}

type AddStatusRequest struct {
	Status string `json:"status" validate:"required,max=50"`
}

type AddNoteRequest struct {
	Note string `json:"note" validate:"required"`
}
