package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is created per reservation rather than deduplicated by phone; the
// conflict check alone treats same-phone-same-slot as a duplicate. Rows are
// cascaded away when their last reservation is removed.
type Customer struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	PhoneNumber string    `gorm:"type:text;not null" json:"phone_number"`
	PartySize   int       `gorm:"not null" json:"party_size"`
	CreatedAt   time.Time `gorm:"type:timestamptz;default:now()" json:"created_at"`
}
