package store

import "context"

// Store defines the persistence interface for lead events, A/B test
// assignments and form submissions. Components take the interface so
// tests can substitute any backing implementation.
type Store interface {
	// Lead event operations
	AppendLeadEvent(ctx context.Context, e *LeadEvent) error
	GetLeadEvents(ctx context.Context, userID string) ([]*LeadEvent, error)
	ListLeadUserIDs(ctx context.Context) ([]string, error)

	// A/B assignment operations
	GetAssignment(ctx context.Context, testID, visitorID string) (string, error)
	PutAssignment(ctx context.Context, testID, visitorID, variantID string) error

	// A/B analytics operations
	RecordABEvent(ctx context.Context, e *ABEvent) error
	GetVariantStats(ctx context.Context, testID string) ([]VariantStats, error)
	GetABEvents(ctx context.Context, testID string) ([]*ABEvent, error)

	// Form submissions
	AddSubscriber(ctx context.Context, sub *Subscriber) error
	AddContact(ctx context.Context, msg *ContactMessage) error

	// Lifecycle
	Close() error
}
