package domain

import "time"

const (
	HelpRequestOpen     = "open"
	HelpRequestResolved = "resolved"
)

type HelpRequest struct {
	ID               int64     `db:"id" json:"id"`
	Title            string    `db:"title" json:"title"`
	Description      string    `db:"description" json:"description"`
	CreatedBy        int64     `db:"created_by" json:"created_by"`
	Status           string    `db:"status" json:"status"`
	CreditOfferChat  int64     `db:"credit_offer_chat" json:"credit_offer_chat"`
	CreditOfferVideo int64     `db:"credit_offer_video" json:"credit_offer_video"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
