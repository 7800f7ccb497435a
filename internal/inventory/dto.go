package inventory

// AdjustRequest changes a material's stock level by a signed delta.
type AdjustRequest struct {
	Delta  int64  `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"required,max=500"`
}

// CreateMaterialRequest registers a new trackable material.
type CreateMaterialRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	SKU      string `json:"sku" validate:"required,max=64"`
	Unit     string `json:"unit" validate:"required,max=32"`
	Quantity int64  `json:"quantity" validate:"gte=0"`
}
