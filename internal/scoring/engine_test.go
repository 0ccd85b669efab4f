package scoring_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadlift/leadlift/internal/scoring"
	"github.com/leadlift/leadlift/internal/store"
	"github.com/leadlift/leadlift/internal/testutil"
)

func TestTrackEvent_ScoreInvariant(t *testing.T) {
	s := testutil.SetupTestStore(t)
	engine := scoring.NewEngine(s)
	ctx := context.Background()

	sequence := []scoring.EventType{
		scoring.EventPageView,
		scoring.EventBlogRead,
		scoring.EventNewsletterSignup,
		scoring.EventPricingPageView,
		scoring.EventDemoRequest,
	}

	for _, typ := range sequence {
		lead, err := engine.TrackEvent(ctx, "user_1", typ, nil)
		require.NoError(t, err)

		// The invariant must hold after every single append
		assert.InDelta(t, lead.TotalScore,
			lead.BehaviorScore+lead.EngagementScore+lead.DemographicScore, 1e-9,
			"after %s", typ)
	}
}

func TestTrackEvent_UnknownTypeScoresZero(t *testing.T) {
	s := testutil.SetupTestStore(t)
	engine := scoring.NewEngine(s)

	lead, err := engine.TrackEvent(context.Background(), "user_1", "made_up_event", nil)
	require.NoError(t, err)

	require.Len(t, lead.Events, 1)
	assert.Equal(t, 0, lead.Events[0].Score)
	assert.Equal(t, scoring.StageCold, lead.Stage)
}

func TestGetLead_NoHistory(t *testing.T) {
	s := testutil.SetupTestStore(t)
	engine := scoring.NewEngine(s)

	_, err := engine.GetLead(context.Background(), "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCompute_EmptyHistory(t *testing.T) {
	lead := scoring.Compute("user_1", nil, time.Now())

	assert.Zero(t, lead.TotalScore)
	assert.Zero(t, lead.BehaviorScore)
	assert.Zero(t, lead.EngagementScore)
	assert.Zero(t, lead.DemographicScore)
	assert.Zero(t, lead.ConversionProbability)
	assert.Equal(t, scoring.StageCold, lead.Stage)
}

func TestCompute_BehaviorWindow(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	events := []scoring.Event{
		{ID: "old", Type: scoring.EventWebinarSignup, Score: 30, Timestamp: now.AddDate(0, 0, -40)},
		{ID: "new", Type: scoring.EventBlogRead, Score: 3, Timestamp: now.AddDate(0, 0, -1)},
	}

	lead := scoring.Compute("user_1", events, now)

	// Only the in-window event feeds the behavior score; the 40-day-old
	// webinar signup stays in the history but contributes nothing.
	assert.InDelta(t, 3.0, lead.BehaviorScore, 1e-9)
	assert.Len(t, lead.Events, 2)

	// 1 active day out of 7 => 1/7 multiplier
	assert.InDelta(t, 3.0*(1.0/7.0), lead.EngagementScore, 1e-9)
}

func TestCompute_EngagementMultiplierCapped(t *testing.T) {
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

	// 20 distinct active days, 1 page view each
	var events []scoring.Event
	for day := 1; day <= 20; day++ {
		events = append(events, scoring.Event{
			ID:        time.Date(2026, 8, day, 9, 0, 0, 0, time.UTC).String(),
			Type:      scoring.EventPageView,
			Score:     1,
			Timestamp: time.Date(2026, 8, day, 9, 0, 0, 0, time.UTC),
		})
	}

	lead := scoring.Compute("user_1", events, now)

	assert.InDelta(t, 20.0, lead.BehaviorScore, 1e-9)
	// 20/7 exceeds the cap, multiplier clamps at 2
	assert.InDelta(t, 40.0, lead.EngagementScore, 1e-9)
}

func TestCompute_DemographicScoreAccumulates(t *testing.T) {
	now := time.Now()

	events := []scoring.Event{
		{
			ID: "c1", Type: scoring.EventContactFormSubmit, Score: 25, Timestamp: now,
			Metadata: map[string]string{"company": "Acme", "phone": "555-1234", "service": "consulting"},
		},
		{
			ID: "c2", Type: scoring.EventContactFormSubmit, Score: 25, Timestamp: now,
			Metadata: map[string]string{"company": "Acme"},
		},
	}

	lead := scoring.Compute("user_1", events, now)

	// First submission: 10 + 5 + 15; second: 10. Not deduplicated.
	assert.InDelta(t, 40.0, lead.DemographicScore, 1e-9)
}

func TestCompute_LowValueServiceIgnored(t *testing.T) {
	now := time.Now()

	events := []scoring.Event{
		{
			ID: "c1", Type: scoring.EventContactFormSubmit, Score: 25, Timestamp: now,
			Metadata: map[string]string{"service": "seo-audit"},
		},
	}

	lead := scoring.Compute("user_1", events, now)
	assert.Zero(t, lead.DemographicScore)
}

func TestCompute_StageOverrides(t *testing.T) {
	now := time.Now()

	t.Run("demo request qualifies at zero score", func(t *testing.T) {
		// The event is far outside the window, so every numeric score is
		// zero, yet the override still applies.
		events := []scoring.Event{
			{ID: "d", Type: scoring.EventDemoRequest, Score: 40, Timestamp: now.AddDate(0, 0, -60)},
		}

		lead := scoring.Compute("user_1", events, now)
		assert.Zero(t, lead.TotalScore)
		assert.Equal(t, scoring.StageQualified, lead.Stage)
	})

	t.Run("contact form makes hot", func(t *testing.T) {
		events := []scoring.Event{
			{ID: "c", Type: scoring.EventContactFormSubmit, Score: 25, Timestamp: now.AddDate(0, 0, -60)},
		}

		lead := scoring.Compute("user_1", events, now)
		assert.Equal(t, scoring.StageHot, lead.Stage)
	})

	t.Run("newsletter makes warm", func(t *testing.T) {
		events := []scoring.Event{
			{ID: "n", Type: scoring.EventNewsletterSignup, Score: 15, Timestamp: now.AddDate(0, 0, -60)},
		}

		lead := scoring.Compute("user_1", events, now)
		assert.Equal(t, scoring.StageWarm, lead.Stage)
	})

	t.Run("demo wins over contact form", func(t *testing.T) {
		events := []scoring.Event{
			{ID: "c", Type: scoring.EventContactFormSubmit, Score: 25, Timestamp: now},
			{ID: "d", Type: scoring.EventDemoRequest, Score: 40, Timestamp: now},
		}

		lead := scoring.Compute("user_1", events, now)
		assert.Equal(t, scoring.StageQualified, lead.Stage)
	})
}

func TestCompute_NumericBanding(t *testing.T) {
	now := time.Now()

	// 25 page views on one day: behavior 25, engagement 25/7, total < 50
	var events []scoring.Event
	for i := 0; i < 25; i++ {
		events = append(events, scoring.Event{
			ID: string(rune('a' + i)), Type: scoring.EventPageView, Score: 1, Timestamp: now,
		})
	}

	lead := scoring.Compute("user_1", events, now)
	assert.Equal(t, scoring.StageCold, lead.Stage)

	// Add three webinar signups: behavior 115, multiplier 1/7,
	// total ≈ 131 => hot by banding alone
	for i := 0; i < 3; i++ {
		events = append(events, scoring.Event{
			ID: string(rune('A' + i)), Type: scoring.EventWebinarSignup, Score: 30, Timestamp: now,
		})
	}

	lead = scoring.Compute("user_1", events, now)
	assert.Equal(t, scoring.StageHot, lead.Stage)
	assert.Greater(t, lead.TotalScore, 100.0)
}

func TestCompute_ConversionProbabilityClamped(t *testing.T) {
	now := time.Now()

	var events []scoring.Event
	for i := 0; i < 20; i++ {
		events = append(events, scoring.Event{
			ID: string(rune('a' + i)), Type: scoring.EventDemoRequest, Score: 40, Timestamp: now,
		})
	}

	lead := scoring.Compute("user_1", events, now)
	assert.InDelta(t, 100.0, lead.ConversionProbability, 1e-9)
}

func TestAnalytics(t *testing.T) {
	s := testutil.SetupTestStore(t)
	engine := scoring.NewEngine(s)
	ctx := context.Background()

	_, err := engine.TrackEvent(ctx, "user_1", scoring.EventDemoRequest, nil)
	require.NoError(t, err)
	_, err = engine.TrackEvent(ctx, "user_2", scoring.EventPageView, nil)
	require.NoError(t, err)
	_, err = engine.TrackEvent(ctx, "user_2", scoring.EventPageView, nil)
	require.NoError(t, err)

	analytics, err := engine.Analytics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, analytics.TotalLeads)
	assert.Equal(t, 1, analytics.ByStage[scoring.StageQualified])
	assert.Equal(t, 1, analytics.ByStage[scoring.StageCold])
	assert.Positive(t, analytics.AvgScore)

	require.NotEmpty(t, analytics.TopEvents)
	assert.Equal(t, scoring.EventPageView, analytics.TopEvents[0].Type)
	assert.Equal(t, 2, analytics.TopEvents[0].Count)
}

func TestAnalytics_Empty(t *testing.T) {
	s := testutil.SetupTestStore(t)
	engine := scoring.NewEngine(s)

	analytics, err := engine.Analytics(context.Background())
	require.NoError(t, err)

	assert.Zero(t, analytics.TotalLeads)
	assert.Zero(t, analytics.AvgScore)
	assert.Empty(t, analytics.TopEvents)
}
