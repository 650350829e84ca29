package presentation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/EnspecPower/analytics_hub/internal/catalog"
)

const (
	logEventRecordViewFailed = "record_view_failed"
	logFieldDashboardID      = "dashboard_id"
)

// PlanKind enumerates the rendering strategies a dashboard can resolve to.
type PlanKind string

const (
	// PlanKindEmbeddedFrame renders a single iframe at FrameURL.
	PlanKindEmbeddedFrame PlanKind = "embedded-frame"
	// PlanKindStaticDocument renders a locally hosted document at DocumentPath.
	PlanKindStaticDocument PlanKind = "static-document"
	// PlanKindMultiReport renders Children behind tabs with SelectedIndex active.
	PlanKindMultiReport PlanKind = "multi-report"
	// PlanKindAssistantPage renders the interactive content assistant.
	PlanKindAssistantPage PlanKind = "assistant-page"
)

// RenderPlan is the resolved, kind-specific description of what to display for
// a dashboard identifier.
type RenderPlan struct {
	Kind        PlanKind
	DashboardID string
	Title       string
	Description string

	FrameURL     string
	DocumentPath string
	// FallbackDocumentPath is set on embedded-frame plans whose source dashboard
	// declares a static fallback; renderers switch to it when the frame reports
	// a load failure.
	FallbackDocumentPath string

	Children      []RenderPlan
	SelectedIndex int
}

// ViewRecorder receives dashboard view notifications.
type ViewRecorder interface {
	RecordView(ctx context.Context, email string, dashboardID string) error
}

// Resolver turns a dashboard identifier into a RenderPlan, recording the view
// as a side effect.
type Resolver struct {
	catalogue    *catalog.Catalogue
	viewRecorder ViewRecorder
	logger       *zap.Logger
}

// NewResolver creates a Resolver over the catalogue. The view recorder may be
// nil when view history is not tracked.
func NewResolver(catalogue *catalog.Catalogue, viewRecorder ViewRecorder, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{catalogue: catalogue, viewRecorder: viewRecorder, logger: logger}
}

// Resolve looks the identifier up in the catalogue and branches on its
// presentation kind. Unknown identifiers return catalog.ErrDashboardNotFound
// so callers redirect home. A failure to record the view is logged and never
// blocks rendering.
func (resolver *Resolver) Resolve(ctx context.Context, viewerEmail string, dashboardID string) (RenderPlan, error) {
	configuration, lookupErr := resolver.catalogue.Lookup(dashboardID)
	if lookupErr != nil {
		return RenderPlan{}, lookupErr
	}

	if resolver.viewRecorder != nil {
		if recordErr := resolver.viewRecorder.RecordView(ctx, viewerEmail, configuration.ID); recordErr != nil {
			resolver.logger.Warn(logEventRecordViewFailed,
				zap.String(logFieldDashboardID, configuration.ID),
				zap.Error(recordErr),
			)
		}
	}

	return PlanForConfiguration(configuration)
}

// PlanForConfiguration builds the RenderPlan for a catalogue entry without
// side effects. Entries whose declared kind is missing its payload resolve to
// catalog.ErrInvalidConfiguration; callers surface that as a visible error
// state, never a blank page.
func PlanForConfiguration(configuration catalog.DashboardConfig) (RenderPlan, error) {
	basePlan := RenderPlan{
		DashboardID: configuration.ID,
		Title:       configuration.Title,
		Description: configuration.Description,
	}

	switch configuration.PresentationKind {
	case catalog.PresentationKindEmbeddedReport:
		if strings.TrimSpace(configuration.EmbedURL) == "" {
			return RenderPlan{}, fmt.Errorf("%w: %s: embedded-report without embed url", catalog.ErrInvalidConfiguration, configuration.ID)
		}
		basePlan.Kind = PlanKindEmbeddedFrame
		basePlan.FrameURL = configuration.EmbedURL
		return basePlan, nil

	case catalog.PresentationKindGeneratedAnalytics:
		if strings.TrimSpace(configuration.FallbackDocumentPath) == "" {
			return RenderPlan{}, fmt.Errorf("%w: %s: generated-analytics without fallback document", catalog.ErrInvalidConfiguration, configuration.ID)
		}
		if configuration.PrefersFallback() || strings.TrimSpace(configuration.EmbedURL) == "" {
			basePlan.Kind = PlanKindStaticDocument
			basePlan.DocumentPath = configuration.FallbackDocumentPath
			return basePlan, nil
		}
		basePlan.Kind = PlanKindEmbeddedFrame
		basePlan.FrameURL = configuration.EmbedURL
		basePlan.FallbackDocumentPath = configuration.FallbackDocumentPath
		return basePlan, nil

	case catalog.PresentationKindMultiReport:
		if len(configuration.ChildReports) == 0 {
			return RenderPlan{}, fmt.Errorf("%w: %s: multi-report without children", catalog.ErrInvalidConfiguration, configuration.ID)
		}
		childPlans := make([]RenderPlan, 0, len(configuration.ChildReports))
		for _, childReport := range configuration.ChildReports {
			childPlan, childErr := planForChildReport(configuration.ID, childReport)
			if childErr != nil {
				return RenderPlan{}, childErr
			}
			childPlans = append(childPlans, childPlan)
		}
		basePlan.Kind = PlanKindMultiReport
		basePlan.Children = childPlans
		basePlan.SelectedIndex = 0
		return basePlan, nil

	case catalog.PresentationKindAssistant:
		basePlan.Kind = PlanKindAssistantPage
		return basePlan, nil

	default:
		return RenderPlan{}, fmt.Errorf("%w: %s: unknown presentation kind %q", catalog.ErrInvalidConfiguration, configuration.ID, configuration.PresentationKind)
	}
}

func planForChildReport(parentID string, childReport catalog.ChildReport) (RenderPlan, error) {
	childPlan := RenderPlan{
		DashboardID: childReport.ID,
		Title:       childReport.Title,
		Description: childReport.Description,
	}

	switch childReport.Kind {
	case catalog.ChildReportKindEmbeddedReport:
		if strings.TrimSpace(childReport.EmbedURL) == "" {
			return RenderPlan{}, fmt.Errorf("%w: %s/%s: embedded-report child without embed url", catalog.ErrInvalidConfiguration, parentID, childReport.ID)
		}
		childPlan.Kind = PlanKindEmbeddedFrame
		childPlan.FrameURL = childReport.EmbedURL
		return childPlan, nil
	case catalog.ChildReportKindDocument:
		if strings.TrimSpace(childReport.DocumentPath) == "" {
			return RenderPlan{}, fmt.Errorf("%w: %s/%s: document child without document path", catalog.ErrInvalidConfiguration, parentID, childReport.ID)
		}
		childPlan.Kind = PlanKindStaticDocument
		childPlan.DocumentPath = childReport.DocumentPath
		return childPlan, nil
	default:
		return RenderPlan{}, fmt.Errorf("%w: %s/%s: unknown child report kind %q", catalog.ErrInvalidConfiguration, parentID, childReport.ID, childReport.Kind)
	}
}
