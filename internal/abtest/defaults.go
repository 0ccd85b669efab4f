package abtest

// DefaultTests are the built-in CTA experiments used when the config
// file names none.
func DefaultTests() []Test {
	return []Test{
		{
			ID:   "cta_button_test",
			Name: "CTA Button Color Test",
			Variants: []Variant{
				{
					ID:          "control",
					Name:        "Blue Button",
					Description: "Original blue CTA button",
					Config:      map[string]string{"color": "primary", "text": "Get Free Consultation"},
				},
				{
					ID:          "variant_a",
					Name:        "Green Button",
					Description: "Green CTA button variant",
					Config:      map[string]string{"color": "secondary", "text": "Get Free Consultation"},
				},
			},
			TrafficSplit:   []int{50, 50},
			Status:         StatusRunning,
			ConversionGoal: "contact_form_submit",
		},
		{
			ID:   "headline_test",
			Name: "Homepage Headline Test",
			Variants: []Variant{
				{
					ID:          "control",
					Name:        "Original Headline",
					Description: "Boost Your Online Presence",
					Config: map[string]string{
						"headline":    "Boost Your Online Presence",
						"subheadline": "Insights, Strategies, and Tools for Digital Marketing & SEO Success.",
					},
				},
				{
					ID:          "variant_a",
					Name:        "Results-Focused Headline",
					Description: "Get More Leads & Sales Online",
					Config: map[string]string{
						"headline":    "Get More Leads & Sales Online",
						"subheadline": "Proven Digital Marketing Strategies That Drive Real Results for Your Business.",
					},
				},
			},
			TrafficSplit:   []int{50, 50},
			Status:         StatusRunning,
			ConversionGoal: "newsletter_signup",
		},
	}
}
