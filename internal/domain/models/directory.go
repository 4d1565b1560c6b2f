package models

import "time"

// Client is a customer the sales are booked against.
type Client struct {
	ID      string `bson:"_id" json:"id" db:"id"`
	Name    string `bson:"name" json:"name" db:"name"`
	Address string `bson:"address" json:"address" db:"address"`
	GST     string `bson:"gst" json:"gst" db:"gst"`
}

// Location groups leads geographically.
type Location struct {
	ID        string    `bson:"_id" json:"id" db:"id"`
	Name      string    `bson:"name" json:"name" db:"name"`
	CreatedAt time.Time `bson:"created_at" json:"-" db:"created_at"`
}

// Deal statuses offered for leads.
var DealChoices = []string{"Need To Visit", "In Discussion", "Deal Closed", "Deal Rejected"}

// Lead is a prospective customer.
type Lead struct {
	ID            string    `bson:"_id" json:"id" db:"id"`
	Name          string    `bson:"name" json:"name" db:"name"`
	LocationID    string    `bson:"location_id,omitempty" json:"location_id" db:"location_id"`
	LocationName  string    `bson:"-" json:"location_name" db:"location_name"`
	IndiamartLink string    `bson:"indiamart_link,omitempty" json:"indiamart_link" db:"indiamart_link"`
	DealStatus    string    `bson:"deal_status,omitempty" json:"deal_status" db:"deal_status"`
	Comments      string    `bson:"comments,omitempty" json:"comments" db:"comments"`
	Address       string    `bson:"address,omitempty" json:"address" db:"address"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at" db:"created_at"`
}

// LeadFilter narrows a lead listing. Empty fields do not filter.
type LeadFilter struct {
	LocationID   string
	DealStatuses []string
}

// LeadPatch carries the fields of a partial lead update; nil means untouched.
type LeadPatch struct {
	Name          *string `json:"name"`
	LocationID    *string `json:"location_id"`
	IndiamartLink *string `json:"indiamart_link"`
	DealStatus    *string `json:"deal_status"`
	Comments      *string `json:"comments"`
	Address       *string `json:"address"`
}

// LocationEventKind names what happened to a location.
type LocationEventKind string

const (
	LocationCreated LocationEventKind = "created"
	LocationUpdated LocationEventKind = "updated"
	LocationDeleted LocationEventKind = "deleted"
)

// LocationEvent is broadcast after every location change.
type LocationEvent struct {
	Kind LocationEventKind `json:"kind"`
	ID   string            `json:"id"`
	Name string            `json:"name"`
}
