package scoring

// EventType identifies the kind of visitor action being scored.
type EventType string

const (
	EventPageView          EventType = "page_view"
	EventBlogRead          EventType = "blog_read"
	EventNewsletterSignup  EventType = "newsletter_signup"
	EventContactFormSubmit EventType = "contact_form_submit"
	EventDownload          EventType = "download"
	EventEmailOpen         EventType = "email_open"
	EventEmailClick        EventType = "email_click"
	EventSocialShare       EventType = "social_share"
	EventReturnVisit       EventType = "return_visit"
	EventPricingPageView   EventType = "pricing_page_view"
	EventCaseStudyView     EventType = "case_study_view"
	EventVideoWatch        EventType = "video_watch"
	EventWebinarSignup     EventType = "webinar_signup"
	EventDemoRequest       EventType = "demo_request"
	EventCTAConversion     EventType = "cta_conversion"
	EventPerformanceMetric EventType = "performance_metric"
	EventPagePerformance   EventType = "page_performance"
)

// Rules maps event kinds to the points they contribute to the behavior
// score. Kinds not listed here score zero.
var Rules = map[EventType]int{
	EventPageView:          1,
	EventBlogRead:          3,
	EventNewsletterSignup:  15,
	EventContactFormSubmit: 25,
	EventDownload:          10,
	EventEmailOpen:         2,
	EventEmailClick:        5,
	EventSocialShare:       8,
	EventReturnVisit:       5,
	EventPricingPageView:   20,
	EventCaseStudyView:     12,
	EventVideoWatch:        8,
	EventWebinarSignup:     30,
	EventDemoRequest:       40,
	EventCTAConversion:     20,
	EventPerformanceMetric: 0,
	EventPagePerformance:   0,
}

// PointsFor returns the score for an event kind, zero for unknown kinds.
func PointsFor(t EventType) int {
	return Rules[t]
}

// highValueServices are service interests that mark a lead as high-value
// in the demographic score.
var highValueServices = map[string]bool{
	"consulting": true,
	"web-design": true,
	"ppc":        true,
}
