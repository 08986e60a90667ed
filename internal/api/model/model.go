package model

import "time"

// Job is a posted task a buyer wants performed
type Job struct {
	JobID       string    `db:"job_id"`
	Title       string    `db:"title"`
	Category    string    `db:"category"`
	Description string    `db:"description"`
	MinPrice    float64   `db:"min_price"`
	MaxPrice    float64   `db:"max_price"`
	Deadline    time.Time `db:"deadline"`
	BuyerEmail  string    `db:"buyer_email"`
	BuyerName   string    `db:"buyer_name"`
	TotalBid    int       `db:"total_bid"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// Bid is a worker's application to a specific job. BuyerEmail is denormalized
// from the job at bid time.
type Bid struct {
	BidID       string    `db:"bid_id"`
	JobID       string    `db:"job_id"`
	WorkerEmail string    `db:"worker_email"`
	BuyerEmail  string    `db:"buyer_email"`
	Price       float64   `db:"price"`
	Deadline    time.Time `db:"deadline"`
	Comment     string    `db:"comment"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
