package products

type CreateProductRequest struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Category     string  `json:"category" validate:"required,max=100"`
	CostMetadata *string `json:"cost_metadata,omitempty"`
}

type UpdateProductRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Category     *string `json:"category,omitempty" validate:"omitempty,max=100"`
	IsActive     *bool   `json:"is_active,omitempty"`
	CostMetadata *string `json:"cost_metadata,omitempty"`
}

type ListProductsRequest struct {
	IsActive *bool
}
