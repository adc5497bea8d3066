package models

import "time"

// Team holds the structure for the teams collection in mongo
type Team struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name" validate:"required,notblank"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
