package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leadlift/leadlift/internal/store"
)

func setup(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.Open(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLeadEvents_AppendAndGet(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	err := s.AppendLeadEvent(ctx, &store.LeadEvent{
		ID:     "ev1",
		UserID: "user_1",
		Type:   "page_view",
		Score:  1,
	})
	if err != nil {
		t.Fatalf("failed to append event: %v", err)
	}

	err = s.AppendLeadEvent(ctx, &store.LeadEvent{
		ID:       "ev2",
		UserID:   "user_1",
		Type:     "contact_form_submit",
		Score:    25,
		Metadata: map[string]string{"company": "Acme", "service": "ppc"},
	})
	if err != nil {
		t.Fatalf("failed to append event: %v", err)
	}

	events, err := s.GetLeadEvents(ctx, "user_1")
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ID != "ev1" || events[1].ID != "ev2" {
		t.Errorf("events out of order: %s, %s", events[0].ID, events[1].ID)
	}
	if events[1].Metadata["company"] != "Acme" {
		t.Errorf("metadata not round-tripped: %v", events[1].Metadata)
	}
}

func TestLeadEvents_OrderedByTimestamp(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	base := time.Now()
	for i, id := range []string{"late", "early", "middle"} {
		offsets := []time.Duration{2 * time.Hour, 0, time.Hour}
		err := s.AppendLeadEvent(ctx, &store.LeadEvent{
			ID:        id,
			UserID:    "user_1",
			Type:      "page_view",
			CreatedAt: base.Add(offsets[i]),
		})
		if err != nil {
			t.Fatalf("failed to append: %v", err)
		}
	}

	events, err := s.GetLeadEvents(ctx, "user_1")
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}

	want := []string{"early", "middle", "late"}
	for i, e := range events {
		if e.ID != want[i] {
			t.Errorf("position %d: got %s, want %s", i, e.ID, want[i])
		}
	}
}

func TestGetLeadEvents_UnknownUser(t *testing.T) {
	s := setup(t)

	events, err := s.GetLeadEvents(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestListLeadUserIDs(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	for i, user := range []string{"b", "a", "b"} {
		err := s.AppendLeadEvent(ctx, &store.LeadEvent{
			ID:     string(rune('x' + i)),
			UserID: user,
			Type:   "page_view",
		})
		if err != nil {
			t.Fatalf("failed to append: %v", err)
		}
	}

	ids, err := s.ListLeadUserIDs(ctx)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("expected [a b], got %v", ids)
	}
}

func TestAssignments_NotFoundThenSticky(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	_, err := s.GetAssignment(ctx, "cta_test", "visitor_1")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.PutAssignment(ctx, "cta_test", "visitor_1", "variant_a"); err != nil {
		t.Fatalf("failed to put assignment: %v", err)
	}

	// A second write for the same pair must not overwrite
	if err := s.PutAssignment(ctx, "cta_test", "visitor_1", "control"); err != nil {
		t.Fatalf("failed to put assignment: %v", err)
	}

	variantID, err := s.GetAssignment(ctx, "cta_test", "visitor_1")
	if err != nil {
		t.Fatalf("failed to get assignment: %v", err)
	}
	if variantID != "variant_a" {
		t.Errorf("expected variant_a, got %s", variantID)
	}
}

func TestABEvents_DedupPerVisitor(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	// Same visitor, same event type, three times
	for i := 0; i < 3; i++ {
		err := s.RecordABEvent(ctx, &store.ABEvent{
			TestID:    "cta_test",
			VariantID: "control",
			EventType: "impression",
			VisitorID: "visitor_1",
		})
		if err != nil {
			t.Fatalf("failed to record: %v", err)
		}
	}

	err := s.RecordABEvent(ctx, &store.ABEvent{
		TestID:    "cta_test",
		VariantID: "control",
		EventType: "conversion",
		VisitorID: "visitor_1",
	})
	if err != nil {
		t.Fatalf("failed to record: %v", err)
	}

	stats, err := s.GetVariantStats(ctx, "cta_test")
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}

	if len(stats) != 1 {
		t.Fatalf("expected 1 variant, got %d", len(stats))
	}
	if stats[0].Impressions != 1 {
		t.Errorf("expected 1 impression after dedup, got %d", stats[0].Impressions)
	}
	if stats[0].Conversions != 1 {
		t.Errorf("expected 1 conversion, got %d", stats[0].Conversions)
	}
}

func TestVariantStats_MultipleVariants(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	visitors := []struct {
		id        string
		variant   string
		converted bool
	}{
		{"v1", "control", true},
		{"v2", "control", false},
		{"v3", "variant_a", true},
	}

	for _, v := range visitors {
		err := s.RecordABEvent(ctx, &store.ABEvent{
			TestID: "t", VariantID: v.variant, EventType: "impression", VisitorID: v.id,
		})
		if err != nil {
			t.Fatalf("failed to record: %v", err)
		}
		if v.converted {
			err := s.RecordABEvent(ctx, &store.ABEvent{
				TestID: "t", VariantID: v.variant, EventType: "conversion", VisitorID: v.id,
			})
			if err != nil {
				t.Fatalf("failed to record: %v", err)
			}
		}
	}

	stats, err := s.GetVariantStats(ctx, "t")
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}

	byVariant := make(map[string]store.VariantStats)
	for _, st := range stats {
		byVariant[st.VariantID] = st
	}

	if got := byVariant["control"]; got.Impressions != 2 || got.Conversions != 1 {
		t.Errorf("control: got %+v", got)
	}
	if got := byVariant["variant_a"]; got.Impressions != 1 || got.Conversions != 1 {
		t.Errorf("variant_a: got %+v", got)
	}
}

func TestAddSubscriber_Duplicate(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	if err := s.AddSubscriber(ctx, &store.Subscriber{Email: "a@example.com"}); err != nil {
		t.Fatalf("first subscribe failed: %v", err)
	}

	err := s.AddSubscriber(ctx, &store.Subscriber{Email: "a@example.com"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestAddContact(t *testing.T) {
	s := setup(t)

	msg := &store.ContactMessage{
		Name:    "Jane",
		Email:   "jane@example.com",
		Message: "Hello",
		Service: "consulting",
	}
	if err := s.AddContact(context.Background(), msg); err != nil {
		t.Fatalf("failed to add contact: %v", err)
	}
	if msg.ID == 0 {
		t.Error("expected contact id to be set")
	}
}
