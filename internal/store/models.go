package store

import "time"

// LeadEvent is a single tracked visitor action. Events are append-only:
// once recorded they are never updated or deleted.
type LeadEvent struct {
	ID        string
	UserID    string
	Type      string
	Score     int
	Metadata  map[string]string // Decoded from JSON
	CreatedAt time.Time
}

// ABEvent is an impression or conversion recorded against a test variant.
type ABEvent struct {
	ID        int64
	TestID    string
	VariantID string
	EventType string // "impression" or "conversion"
	VisitorID string
	Value     float64
	CreatedAt time.Time
}

// VariantStats aggregates unique-visitor impressions and conversions
// for one variant of a test.
type VariantStats struct {
	VariantID   string
	Impressions int
	Conversions int
}

// Subscriber is a newsletter signup.
type Subscriber struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// ContactMessage is a contact-form submission.
type ContactMessage struct {
	ID        int64
	Name      string
	Email     string
	Message   string
	Company   string
	Phone     string
	Service   string
	CreatedAt time.Time
}
