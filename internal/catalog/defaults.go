package catalog

// DefaultDashboards mirrors the reporting surfaces the product shipped with.
// Operators can replace the set with a YAML catalogue file.
func DefaultDashboards() []DashboardConfig {
	return []DashboardConfig{
		{
			ID:               "linkedin",
			Title:            "LinkedIn Analytics",
			Description:      "Track LinkedIn engagement, followers, and post performance",
			Icon:             IconLinkedIn,
			PresentationKind: PresentationKindEmbeddedReport,
			EmbedURL:         "https://app.powerbi.com/reportEmbed?reportId=f78bbeed-d785-4088-82df-6c5ca5e14c9e&autoAuth=true&ctid=81fe4302-0838-482a-b5d1-2db7126cf178",
		},
		{
			ID:                   "google-analytics",
			Title:                "Google Analytics",
			Description:          "Website traffic, user behavior, and conversion metrics",
			Icon:                 IconBarChart,
			PresentationKind:     PresentationKindGeneratedAnalytics,
			EmbedURL:             "https://lookerstudio.google.com/embed/reporting/1c566451-86f9-40e1-9ef1-90b8ffaea128/page/kIV1C",
			FallbackDocumentPath: "/Google_Analytics_Website.pdf",
		},
		{
			ID:               "custom-reports",
			Title:            "Custom Reports",
			Description:      "Custom analytics reports",
			Icon:             IconFileBarChart,
			PresentationKind: PresentationKindMultiReport,
			ChildReports: []ChildReport{
				{
					ID:          "powerbi-report",
					Title:       "PowerBI Dashboard",
					Kind:        ChildReportKindEmbeddedReport,
					EmbedURL:    "https://app.powerbi.com/reportEmbed?reportId=d0d378cf-8db0-4029-bc94-5d4b47a882ab&autoAuth=true&ctid=81fe4302-0838-482a-b5d1-2db7126cf178",
					Description: "PowerBI analytics dashboard with key metrics",
				},
				{
					ID:           "social-analytics",
					Title:        "Social Analytics",
					Kind:         ChildReportKindDocument,
					DocumentPath: "/Microsoft-Power-BI-Presentation.pdf",
					Description:  "Social media performance metrics and insights",
				},
				{
					ID:           "ga-jan-mar",
					Title:        "GA: Jan-Mar 2023",
					Kind:         ChildReportKindDocument,
					DocumentPath: "/Google_Analytics_Jan_Mar.pdf",
					Description:  "Google Analytics report for January to March 2023",
				},
				{
					ID:           "ga-feb15-mar15",
					Title:        "GA: Feb 15-Mar 15",
					Kind:         ChildReportKindDocument,
					DocumentPath: "/Google_Analytics_Feb15_Mar15.pdf",
					Description:  "Google Analytics report for February 15 to March 15, 2023",
				},
			},
		},
		{
			ID:               "planable",
			Title:            "Content Calendar Analytics",
			Description:      "Analyze content performance and scheduling efficiency",
			Icon:             IconPieChart,
			PresentationKind: PresentationKindEmbeddedReport,
			EmbedURL:         "https://plannable.io/reportEmbed?reportId=planable",
		},
		{
			ID:               "odoo",
			Title:            "Business Analytics",
			Description:      "Access business operations and ERP analytics",
			Icon:             IconBuilding,
			PresentationKind: PresentationKindEmbeddedReport,
			EmbedURL:         "https://odoo.com/reportEmbed?reportId=odoo",
		},
		{
			ID:               "ai-navigator",
			Title:            "AI Content Assistant",
			Description:      "AI-powered social media insights and content suggestions",
			Icon:             IconBrain,
			PresentationKind: PresentationKindAssistant,
		},
	}
}
