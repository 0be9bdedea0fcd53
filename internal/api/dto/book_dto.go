package dto

// BookRequest: payload for creating or updating a book. Quantity is a
// pointer so an explicit 0 passes "required" validation.
type BookRequest struct {
	Name     string `json:"name" binding:"required"`
	Details  string `json:"details" binding:"required"`
	Image    string `json:"image" binding:"omitempty"`
	Quantity *int   `json:"quantity" binding:"required,min=0"`
}
