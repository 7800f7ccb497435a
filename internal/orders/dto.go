package orders

// CreateOrderRequest is the payload for placing an order.
type CreateOrderRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0,lte=100000"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	FilePath  *string `json:"file_path,omitempty" validate:"omitempty,max=500"`
	FileURL   *string `json:"file_url,omitempty" validate:"omitempty,url,max=1000"`
}

// UpdateStatusRequest moves an order through its lifecycle.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}
