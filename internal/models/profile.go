package models

import "time"

// ClientProfile is the derived shopping profile of one client. It is
// recomputed from scratch on every pass and replaces the stored record.
type ClientProfile struct {
	ClientID string `json:"client_id" bson:"client_id"`
	// Category is nil when no category could be resolved.
	Category          *string   `json:"category" bson:"category"`
	Items             []string  `json:"item" bson:"item"`
	Brands            []string  `json:"brands" bson:"brands"`
	Text              string    `json:"text" bson:"text"`
	LatestMessageDate time.Time `json:"latest_message_date" bson:"latest_message_date"`
	Address           any       `json:"address" bson:"address"`
}

// CategoryName returns the resolved category or an empty string.
func (p *ClientProfile) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return *p.Category
}
