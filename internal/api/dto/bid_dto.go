package dto

// CreateBidRequest is the body of POST /add-bid. Email is the worker's.
type CreateBidRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	JobID    string  `json:"jobID" binding:"required"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	Deadline string  `json:"deadline" binding:"required"`
	Comment  string  `json:"comment"`
}

// UpdateBidStatusRequest is the body of PATCH /update-bidStatus/:id
type UpdateBidStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type BidDTO struct {
	BidID       string  `json:"bid_id"`
	JobID       string  `json:"jobID"`
	WorkerEmail string  `json:"email"`
	BuyerEmail  string  `json:"buyer"`
	Price       float64 `json:"price"`
	Deadline    string  `json:"deadline"`
	Comment     string  `json:"comment"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}
