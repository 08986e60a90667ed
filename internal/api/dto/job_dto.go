package dto

type BuyerDTO struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// SaveJobRequest is the body of both POST /add-job and PUT /update-job/:id
type SaveJobRequest struct {
	Title       string   `json:"job_title" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Description string   `json:"description"`
	MinPrice    float64  `json:"min_price" binding:"required,gt=0"`
	MaxPrice    float64  `json:"max_price" binding:"required,gtefield=MinPrice"`
	Deadline    string   `json:"deadline" binding:"required"`
	Buyer       BuyerDTO `json:"buyer" binding:"required"`
}

// SearchJobsRequest is the query of GET /all-jobs. Cursor and page size are
// optional; without them the full result set is returned.
type SearchJobsRequest struct {
	Filter   string `form:"filter"`
	Search   string `form:"search"`
	Sort     string `form:"sort"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type SearchJobsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	NextCursor string   `json:"next_cursor,omitempty"`
}

type JobDTO struct {
	JobID       string   `json:"job_id"`
	Title       string   `json:"job_title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	MinPrice    float64  `json:"min_price"`
	MaxPrice    float64  `json:"max_price"`
	Deadline    string   `json:"deadline"`
	Buyer       BuyerDTO `json:"buyer"`
	TotalBid    int      `json:"total_bid"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}
