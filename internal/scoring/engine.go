// Package scoring converts accumulated visitor events into a composite
// lead score, a conversion probability and a lifecycle stage. Derived
// values are recomputed in full from the event history on every write,
// so recomputation is idempotent given the same event list.
package scoring

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/leadlift/leadlift/internal/store"
)

// Stage buckets a lead's sales-readiness.
type Stage string

const (
	StageCold      Stage = "cold"
	StageWarm      Stage = "warm"
	StageHot       Stage = "hot"
	StageQualified Stage = "qualified"
	StageCustomer  Stage = "customer"
)

// Stages lists all stages in ascending readiness order.
var Stages = []Stage{StageCold, StageWarm, StageHot, StageQualified, StageCustomer}

// behaviorWindow is the trailing window that feeds the behavior and
// engagement scores. Older events stay in the history but stop
// contributing.
const behaviorWindow = 30 * 24 * time.Hour

// Event is one scored action in a lead's history.
type Event struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Score     int               `json:"score"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// LeadScore is the derived scoring record for one anonymous visitor.
// TotalScore always equals BehaviorScore + EngagementScore + DemographicScore.
type LeadScore struct {
	UserID                string    `json:"user_id"`
	TotalScore            float64   `json:"total_score"`
	BehaviorScore         float64   `json:"behavior_score"`
	EngagementScore       float64   `json:"engagement_score"`
	DemographicScore      float64   `json:"demographic_score"`
	ConversionProbability float64   `json:"conversion_probability"`
	Stage                 Stage     `json:"stage"`
	Events                []Event   `json:"events"`
	LastUpdated           time.Time `json:"last_updated"`
}

// Engine tracks lead events and maintains derived scores.
type Engine struct {
	store store.Store
	now   func() time.Time
}

func NewEngine(s store.Store) *Engine {
	return &Engine{store: s, now: time.Now}
}

// SetClock overrides the engine's time source, for tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// TrackEvent appends a new event to the visitor's history and returns
// the fully recomputed lead score.
func (e *Engine) TrackEvent(ctx context.Context, userID string, typ EventType, metadata map[string]string) (*LeadScore, error) {
	now := e.now()

	err := e.store.AppendLeadEvent(ctx, &store.LeadEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      string(typ),
		Score:     PointsFor(typ),
		Metadata:  metadata,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append event: %w", err)
	}

	return e.GetLead(ctx, userID)
}

// GetLead recomputes and returns the score record for a visitor.
// Returns store.ErrNotFound when the visitor has no history.
func (e *Engine) GetLead(ctx context.Context, userID string) (*LeadScore, error) {
	stored, err := e.store.GetLeadEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	if len(stored) == 0 {
		return nil, store.ErrNotFound
	}

	events := make([]Event, len(stored))
	for i, se := range stored {
		events[i] = Event{
			ID:        se.ID,
			Type:      EventType(se.Type),
			Timestamp: se.CreatedAt,
			Score:     se.Score,
			Metadata:  se.Metadata,
		}
	}

	return Compute(userID, events, e.now()), nil
}

// Compute derives the full score record from an event history. It is a
// pure function of the events and the reference time.
func Compute(userID string, events []Event, now time.Time) *LeadScore {
	ls := &LeadScore{
		UserID:      userID,
		Stage:       StageCold,
		Events:      events,
		LastUpdated: now,
	}

	cutoff := now.Add(-behaviorWindow)
	activeDays := make(map[string]bool)

	for _, ev := range events {
		if ev.Timestamp.After(cutoff) {
			ls.BehaviorScore += float64(ev.Score)
			activeDays[ev.Timestamp.Format("2006-01-02")] = true
		}
	}

	// Spread-out engagement earns up to a 2x multiplier.
	multiplier := math.Min(float64(len(activeDays))/7, 2)
	ls.EngagementScore = ls.BehaviorScore * multiplier

	ls.DemographicScore = demographicScore(events)

	ls.TotalScore = ls.BehaviorScore + ls.EngagementScore + ls.DemographicScore
	ls.ConversionProbability = math.Min(ls.TotalScore/200*100, 100)
	ls.Stage = classify(ls.TotalScore, events)

	return ls
}

// demographicScore derives points from contact-form metadata. Multiple
// submissions accumulate.
func demographicScore(events []Event) float64 {
	score := 0.0
	for _, ev := range events {
		if ev.Type != EventContactFormSubmit {
			continue
		}
		if ev.Metadata["company"] != "" {
			score += 10
		}
		if ev.Metadata["phone"] != "" {
			score += 5
		}
		if highValueServices[ev.Metadata["service"]] {
			score += 15
		}
	}
	return score
}

// classify maps a total score plus high-value event presence to a stage.
// Event overrides take precedence over the numeric banding; first match
// wins.
func classify(totalScore float64, events []Event) Stage {
	var hasContactForm, hasDemoRequest, hasNewsletterSignup bool
	for _, ev := range events {
		switch ev.Type {
		case EventContactFormSubmit:
			hasContactForm = true
		case EventDemoRequest:
			hasDemoRequest = true
		case EventNewsletterSignup:
			hasNewsletterSignup = true
		}
	}

	switch {
	case hasDemoRequest || totalScore >= 150:
		return StageQualified
	case hasContactForm || totalScore >= 100:
		return StageHot
	case hasNewsletterSignup || totalScore >= 50:
		return StageWarm
	default:
		return StageCold
	}
}

// EventCount is a tally of one event kind across all leads.
type EventCount struct {
	Type  EventType `json:"type"`
	Count int       `json:"count"`
}

// Analytics is the aggregate view over every scored lead.
type Analytics struct {
	TotalLeads int           `json:"total_leads"`
	ByStage    map[Stage]int `json:"by_stage"`
	AvgScore   float64       `json:"avg_score"`
	TopEvents  []EventCount  `json:"top_events"`
}

// Analytics aggregates stage counts, average score and the five most
// frequent event kinds across all leads.
func (e *Engine) Analytics(ctx context.Context) (*Analytics, error) {
	userIDs, err := e.store.ListLeadUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	a := &Analytics{
		ByStage: map[Stage]int{
			StageCold:      0,
			StageWarm:      0,
			StageHot:       0,
			StageQualified: 0,
			StageCustomer:  0,
		},
	}

	totalScore := 0.0
	eventCounts := make(map[EventType]int)

	for _, userID := range userIDs {
		lead, err := e.GetLead(ctx, userID)
		if err != nil {
			return nil, err
		}

		a.TotalLeads++
		a.ByStage[lead.Stage]++
		totalScore += lead.TotalScore

		for _, ev := range lead.Events {
			eventCounts[ev.Type]++
		}
	}

	if a.TotalLeads > 0 {
		a.AvgScore = totalScore / float64(a.TotalLeads)
	}

	for typ, count := range eventCounts {
		a.TopEvents = append(a.TopEvents, EventCount{Type: typ, Count: count})
	}
	sort.Slice(a.TopEvents, func(i, j int) bool {
		if a.TopEvents[i].Count != a.TopEvents[j].Count {
			return a.TopEvents[i].Count > a.TopEvents[j].Count
		}
		return a.TopEvents[i].Type < a.TopEvents[j].Type
	})
	if len(a.TopEvents) > 5 {
		a.TopEvents = a.TopEvents[:5]
	}

	return a, nil
}
