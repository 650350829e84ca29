package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/temirov/GAuss/pkg/constants"
	"go.uber.org/zap"

	"github.com/EnspecPower/analytics_hub/internal/catalog"
	"github.com/EnspecPower/analytics_hub/internal/compare"
	"github.com/EnspecPower/analytics_hub/internal/history"
	"github.com/EnspecPower/analytics_hub/internal/presentation"
	"github.com/EnspecPower/analytics_hub/internal/userstate"
	"github.com/EnspecPower/analytics_hub/pkg/footer"
)

const (
	// HomeRoutePath serves the catalogue grid.
	HomeRoutePath = "/"
	// DashboardRoutePath serves a single resolved dashboard.
	DashboardRoutePath = "/dashboard/:dashboard_id"
	// AssistantRoutePath serves the content assistant page.
	AssistantRoutePath = "/ai-navigator"
	// ProfileRoutePath serves the viewer's profile page.
	ProfileRoutePath = "/profile"

	routeParameterDashboardID = "dashboard_id"

	htmlContentType = "text/html; charset=utf-8"

	sitePageTitle          = "Enspec Analytics Hub"
	homeSearchPlaceholder  = "Search dashboards"
	homeRecentSectionTitle = "Recently Viewed"
	homeCatalogueTitle     = "All Dashboards"
	homeCompareButtonLabel = "Compare"
	homeCompareHint        = "Select two dashboards to compare."
	homeEmptyRecentMessage = "Nothing viewed yet. Open a dashboard to get started."

	dashboardFallbackNotice  = "The live report could not be loaded. Showing the latest saved copy instead."
	dashboardErrorPageTitle  = "Dashboard unavailable"
	dashboardErrorPageDetail = "This dashboard is misconfigured. Ask an administrator to review its catalogue entry."

	compareEmptyColumnMessage = "This dashboard is no longer available."
	comparePageTitle          = "Compare Dashboards"

	assistantPageTitle        = "AI Navigator"
	assistantPromptLabel      = "What should the post cover?"
	assistantGenerateLabel    = "Generate draft"
	assistantNotepadLabel     = "Notepad"
	assistantNotepadSavedNote = "Notepad saved."

	notFoundPageTitle   = "Page not found"
	notFoundPageMessage = "The page you requested does not exist. Head back to the dashboard catalogue."

	profilePageTitle = "Your Profile"

	clientConfigElementID = "hub-config"

	logEventRenderPage   = "render_page"
	logEventRenderFooter = "render_footer"
	errorValueRender     = "render_failed"
)

type pageViewer struct {
	Email      string
	Name       string
	PictureURL string
	Role       string
}

type homeDashboardCard struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Favorite    bool
}

type homePageData struct {
	PageTitle             string
	Viewer                pageViewer
	RecentSectionTitle    string
	RecentCards           []homeDashboardCard
	EmptyRecentMessage    string
	CatalogueSectionTitle string
	CatalogueCards        []homeDashboardCard
	SearchPlaceholder     string
	CompareButtonLabel    string
	CompareHint           string
	LoginPath             string
	LogoutPath            string
	ClientConfigElementID string
	ClientConfigJSON      template.JS
	Footer                template.HTML
}

type hubClientConfig struct {
	APIPaths         map[string]string `json:"api_paths"`
	Paths            map[string]string `json:"paths"`
	CompareParameter string            `json:"compare_parameter"`
	CompareLimit     int               `json:"compare_limit"`
}

type dashboardPageData struct {
	PageTitle      string
	Viewer         pageViewer
	Plan           presentation.RenderPlan
	FallbackNotice string
	LogoutPath     string
	Footer         template.HTML
}

type compareColumn struct {
	Title        string
	Found        bool
	Plan         presentation.RenderPlan
	EmptyMessage string
}

type comparePageData struct {
	PageTitle  string
	Viewer     pageViewer
	Columns    []compareColumn
	LogoutPath string
	Footer     template.HTML
}

type assistantPageData struct {
	PageTitle             string
	Viewer                pageViewer
	PromptLabel           string
	GenerateLabel         string
	NotepadLabel          string
	NotepadSavedNote      string
	ClientConfigElementID string
	ClientConfigJSON      template.JS
	LogoutPath            string
	Footer                template.HTML
}

type profilePageData struct {
	PageTitle     string
	Viewer        pageViewer
	FavoriteCards []homeDashboardCard
	LogoutPath    string
	Footer        template.HTML
}

type errorPageData struct {
	PageTitle string
	Message   string
	HomePath  string
	Footer    template.HTML
}

// WebHandlers serves the authenticated HTML surface.
type WebHandlers struct {
	catalogue      *catalog.Catalogue
	userState      *userstate.Store
	historyTracker *history.Tracker
	resolver       *presentation.Resolver
	authManager    *AuthManager
	logger         *zap.Logger
	templates      *template.Template
	footerHTML     template.HTML
}

// NewWebHandlers compiles the page templates and wires the handler set.
func NewWebHandlers(
	catalogue *catalog.Catalogue,
	userState *userstate.Store,
	historyTracker *history.Tracker,
	resolver *presentation.Resolver,
	authManager *AuthManager,
	logger *zap.Logger,
) *WebHandlers {
	compiledTemplates := template.Must(template.New("home").Parse(homeTemplateHTML))
	template.Must(compiledTemplates.New("dashboard").Parse(dashboardTemplateHTML))
	template.Must(compiledTemplates.New("compare").Parse(compareTemplateHTML))
	template.Must(compiledTemplates.New("assistant").Parse(assistantTemplateHTML))
	template.Must(compiledTemplates.New("profile").Parse(profileTemplateHTML))
	template.Must(compiledTemplates.New("error").Parse(errorTemplateHTML))

	footerHTML, footerErr := footer.Render(footer.DefaultConfig())
	if footerErr != nil {
		logger.Warn(logEventRenderFooter, zap.Error(footerErr))
	}

	return &WebHandlers{
		catalogue:      catalogue,
		userState:      userState,
		historyTracker: historyTracker,
		resolver:       resolver,
		authManager:    authManager,
		logger:         logger,
		templates:      compiledTemplates,
		footerHTML:     footerHTML,
	}
}

// RenderHome serves the catalogue grid with the viewer's recent and favorite
// dashboards folded in.
func (handlers *WebHandlers) RenderHome(context *gin.Context) {
	viewer := handlers.viewerForRequest(context)

	recentEntries := handlers.historyTracker.Recent(context.Request.Context(), viewer.Email, history.DefaultDisplayLimit)
	profile := handlers.profileForViewer(context, viewer)
	catalogueEntries := catalog.Filter(handlers.catalogue.All(), context.Query(searchQueryParameter))

	data := homePageData{
		PageTitle:             sitePageTitle,
		Viewer:                viewer,
		RecentSectionTitle:    homeRecentSectionTitle,
		RecentCards:           cardsForEntries(recentEntries, profile),
		EmptyRecentMessage:    homeEmptyRecentMessage,
		CatalogueSectionTitle: homeCatalogueTitle,
		CatalogueCards:        cardsForEntries(catalogueEntries, profile),
		SearchPlaceholder:     homeSearchPlaceholder,
		CompareButtonLabel:    homeCompareButtonLabel,
		CompareHint:           homeCompareHint,
		LoginPath:             constants.LoginPath,
		LogoutPath:            constants.LogoutPath,
		ClientConfigElementID: clientConfigElementID,
		ClientConfigJSON:      handlers.clientConfigJSON(),
		Footer:                handlers.footerHTML,
	}

	handlers.renderPage(context, "home", data)
}

// RenderDashboard resolves the dashboard identifier and serves the matching
// page variant. Unknown identifiers redirect home; invalid configurations
// render a visible error page.
func (handlers *WebHandlers) RenderDashboard(context *gin.Context) {
	viewer := handlers.viewerForRequest(context)
	dashboardID := context.Param(routeParameterDashboardID)

	renderPlan, resolveErr := handlers.resolver.Resolve(context.Request.Context(), viewer.Email, dashboardID)
	if errors.Is(resolveErr, catalog.ErrDashboardNotFound) {
		context.Redirect(http.StatusFound, HomeRoutePath)
		return
	}
	if errors.Is(resolveErr, catalog.ErrInvalidConfiguration) {
		handlers.renderPage(context, "error", errorPageData{
			PageTitle: dashboardErrorPageTitle,
			Message:   dashboardErrorPageDetail,
			HomePath:  HomeRoutePath,
			Footer:    handlers.footerHTML,
		})
		return
	}
	if resolveErr != nil {
		handlers.logger.Error(logEventRenderPage, zap.Error(resolveErr))
		context.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueRender})
		return
	}

	if renderPlan.Kind == presentation.PlanKindAssistantPage {
		context.Redirect(http.StatusFound, AssistantRoutePath)
		return
	}

	handlers.renderPage(context, "dashboard", dashboardPageData{
		PageTitle:      renderPlan.Title,
		Viewer:         viewer,
		Plan:           renderPlan,
		FallbackNotice: dashboardFallbackNotice,
		LogoutPath:     constants.LogoutPath,
		Footer:         handlers.footerHTML,
	})
}

// RenderCompare serves two dashboards side by side from the shareable
// comparison route. Identifiers that no longer resolve degrade to an
// empty-state column.
func (handlers *WebHandlers) RenderCompare(context *gin.Context) {
	viewer := handlers.viewerForRequest(context)
	comparisonEntries := compare.ParseComparisonRoute(handlers.catalogue, context.Query(compare.ComparisonQueryParameter))

	columns := make([]compareColumn, 0, len(comparisonEntries))
	for _, comparisonEntry := range comparisonEntries {
		column := compareColumn{
			Title:        comparisonEntry.DashboardID,
			EmptyMessage: compareEmptyColumnMessage,
		}
		if comparisonEntry.Found {
			column.Title = comparisonEntry.Configuration.Title
			columnPlan, planErr := presentation.PlanForConfiguration(comparisonEntry.Configuration)
			if planErr == nil {
				// Tabbed dashboards compare by their first report.
				if columnPlan.Kind == presentation.PlanKindMultiReport && len(columnPlan.Children) > 0 {
					columnPlan = columnPlan.Children[columnPlan.SelectedIndex]
				}
				column.Found = true
				column.Plan = columnPlan
			}
		}
		columns = append(columns, column)
	}

	handlers.renderPage(context, "compare", comparePageData{
		PageTitle:  comparePageTitle,
		Viewer:     viewer,
		Columns:    columns,
		LogoutPath: constants.LogoutPath,
		Footer:     handlers.footerHTML,
	})
}

// RenderAssistant serves the content assistant page.
func (handlers *WebHandlers) RenderAssistant(context *gin.Context) {
	viewer := handlers.viewerForRequest(context)

	handlers.renderPage(context, "assistant", assistantPageData{
		PageTitle:             assistantPageTitle,
		Viewer:                viewer,
		PromptLabel:           assistantPromptLabel,
		GenerateLabel:         assistantGenerateLabel,
		NotepadLabel:          assistantNotepadLabel,
		NotepadSavedNote:      assistantNotepadSavedNote,
		ClientConfigElementID: clientConfigElementID,
		ClientConfigJSON:      handlers.clientConfigJSON(),
		LogoutPath:            constants.LogoutPath,
		Footer:                handlers.footerHTML,
	})
}

// RenderProfile serves the viewer's profile with their favorite dashboards.
func (handlers *WebHandlers) RenderProfile(context *gin.Context) {
	viewer := handlers.viewerForRequest(context)
	profile := handlers.profileForViewer(context, viewer)

	favoriteEntries := make([]catalog.DashboardConfig, 0, len(profile.FavoriteReports))
	for _, favoriteID := range profile.FavoriteReports {
		configuration, lookupErr := handlers.catalogue.Lookup(favoriteID)
		if lookupErr != nil {
			continue
		}
		favoriteEntries = append(favoriteEntries, configuration)
	}

	handlers.renderPage(context, "profile", profilePageData{
		PageTitle:     profilePageTitle,
		Viewer:        viewer,
		FavoriteCards: cardsForEntries(favoriteEntries, profile),
		LogoutPath:    constants.LogoutPath,
		Footer:        handlers.footerHTML,
	})
}

// RenderNotFound serves the catch-all page for unmatched routes.
func (handlers *WebHandlers) RenderNotFound(context *gin.Context) {
	handlers.renderTemplate(context, "error", errorPageData{
		PageTitle: notFoundPageTitle,
		Message:   notFoundPageMessage,
		HomePath:  HomeRoutePath,
		Footer:    handlers.footerHTML,
	}, http.StatusNotFound)
}

func (handlers *WebHandlers) viewerForRequest(context *gin.Context) pageViewer {
	currentUser, ok := handlers.authManager.CurrentUser(context)
	if !ok {
		return pageViewer{}
	}
	viewer := pageViewer{
		Email:      currentUser.Email,
		Name:       currentUser.Name,
		PictureURL: currentUser.PictureURL,
	}
	profile, found, profileErr := handlers.userState.Current(context.Request.Context(), currentUser.Email)
	if profileErr != nil {
		handlers.logger.Warn(logEventLoadProfile, zap.Error(profileErr))
		return viewer
	}
	if found {
		viewer.Role = profile.Role
	}
	return viewer
}

func (handlers *WebHandlers) profileForViewer(context *gin.Context, viewer pageViewer) userstate.UserProfile {
	if viewer.Email == "" {
		return userstate.UserProfile{}
	}
	profile, _, profileErr := handlers.userState.Current(context.Request.Context(), viewer.Email)
	if profileErr != nil {
		handlers.logger.Warn(logEventLoadProfile, zap.Error(profileErr))
		return userstate.UserProfile{}
	}
	return profile
}

func (handlers *WebHandlers) clientConfigJSON() template.JS {
	clientConfig := hubClientConfig{
		APIPaths: map[string]string{
			"me":                "/api/me",
			"dashboards":        "/api/dashboards",
			"recent":            "/api/recent",
			"favorites_prefix":  "/api/favorites/",
			"notepad":           "/api/notepad",
			"content_generator": "/api/content-generator",
		},
		Paths: map[string]string{
			"home":      HomeRoutePath,
			"compare":   compare.ComparisonRoutePath,
			"assistant": AssistantRoutePath,
			"profile":   ProfileRoutePath,
			"login":     constants.LoginPath,
			"logout":    constants.LogoutPath,
		},
		CompareParameter: compare.ComparisonQueryParameter,
		CompareLimit:     compare.MaximumSelection,
	}

	configPayload, marshalErr := json.Marshal(clientConfig)
	if marshalErr != nil {
		handlers.logger.Warn(logEventRenderPage, zap.Error(marshalErr))
		configPayload = []byte("{}")
	}
	return template.JS(configPayload)
}

func (handlers *WebHandlers) renderPage(context *gin.Context, templateName string, data any) {
	handlers.renderTemplate(context, templateName, data, http.StatusOK)
}

func (handlers *WebHandlers) renderTemplate(context *gin.Context, templateName string, data any, statusCode int) {
	var buffer bytes.Buffer
	if executeErr := handlers.templates.ExecuteTemplate(&buffer, templateName, data); executeErr != nil {
		handlers.logger.Error(logEventRenderPage, zap.Error(executeErr))
		context.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueRender})
		return
	}
	context.Data(statusCode, htmlContentType, buffer.Bytes())
}

func cardsForEntries(entries []catalog.DashboardConfig, profile userstate.UserProfile) []homeDashboardCard {
	cards := make([]homeDashboardCard, 0, len(entries))
	for _, entry := range entries {
		cards = append(cards, homeDashboardCard{
			ID:          entry.ID,
			Title:       entry.Title,
			Description: entry.Description,
			Icon:        string(entry.Icon),
			Favorite:    profile.IsFavorite(entry.ID),
		})
	}
	return cards
}
