package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/temirov/GAuss/pkg/constants"
	"github.com/temirov/GAuss/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/EnspecPower/analytics_hub/internal/catalog"
	"github.com/EnspecPower/analytics_hub/internal/compare"
	"github.com/EnspecPower/analytics_hub/internal/draft"
	"github.com/EnspecPower/analytics_hub/internal/history"
	"github.com/EnspecPower/analytics_hub/internal/httpapi"
	"github.com/EnspecPower/analytics_hub/internal/presentation"
	"github.com/EnspecPower/analytics_hub/internal/testutil"
	"github.com/EnspecPower/analytics_hub/internal/userstate"
)

const (
	testSessionSecret = "12345678901234567890123456789012"
	testViewerEmail   = "viewer@enspecpower.com"
	testViewerName    = "Test Viewer"
)

type stubDraftGenerator struct {
	configured bool
	draftText  string
	generated  []draft.DraftRequest
	err        error
}

func (generator *stubDraftGenerator) Configured() bool {
	return generator.configured
}

func (generator *stubDraftGenerator) GenerateDraft(_ context.Context, request draft.DraftRequest) (string, error) {
	generator.generated = append(generator.generated, request)
	if !generator.configured {
		return "", draft.ErrMissingAPIKey
	}
	if generator.err != nil {
		return "", generator.err
	}
	return generator.draftText, nil
}

type testHarness struct {
	router         *gin.Engine
	database       *gorm.DB
	draftGenerator *stubDraftGenerator
}

func buildTestHarness(t *testing.T) *testHarness {
	t.Helper()

	session.NewSession([]byte(testSessionSecret))
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	database := testutil.NewSQLiteTestDatabase(t).OpenDatabase(t)

	catalogue, catalogueErr := catalog.NewCatalogue(catalog.DefaultDashboards())
	require.NoError(t, catalogueErr)

	userState := userstate.NewStore(database, logger)
	historyTracker := history.NewTracker(database, catalogue, logger)
	resolver := presentation.NewResolver(catalogue, historyTracker, logger)
	draftGenerator := &stubDraftGenerator{configured: true, draftText: "Drafted post"}

	authManager := httpapi.NewAuthManager(logger, userState)
	apiHandlers := httpapi.NewAPIHandlers(catalogue, userState, historyTracker, draftGenerator, authManager, logger)
	webHandlers := httpapi.NewWebHandlers(catalogue, userState, historyTracker, resolver, authManager, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.RequestLogger(logger))

	router.GET(httpapi.HomeRoutePath, authManager.RequireAuthenticatedWeb(), webHandlers.RenderHome)
	router.GET(httpapi.DashboardRoutePath, authManager.RequireAuthenticatedWeb(), webHandlers.RenderDashboard)
	router.GET(compare.ComparisonRoutePath, authManager.RequireAuthenticatedWeb(), webHandlers.RenderCompare)
	router.GET(httpapi.AssistantRoutePath, authManager.RequireAuthenticatedWeb(), webHandlers.RenderAssistant)
	router.GET(httpapi.ProfileRoutePath, authManager.RequireAuthenticatedWeb(), webHandlers.RenderProfile)
	router.NoRoute(webHandlers.RenderNotFound)

	apiGroup := router.Group("/api")
	apiGroup.Use(authManager.RequireAuthenticatedJSON())
	apiGroup.GET("/me", apiHandlers.HandleCurrentUser)
	apiGroup.GET("/dashboards", apiHandlers.HandleListDashboards)
	apiGroup.GET("/recent", apiHandlers.HandleRecentDashboards)
	apiGroup.POST("/favorites/:dashboard_id", apiHandlers.HandleToggleFavorite)
	apiGroup.GET("/notepad", apiHandlers.HandleGetNotepad)
	apiGroup.PUT("/notepad", apiHandlers.HandleSaveNotepad)
	apiGroup.POST("/content-generator", apiHandlers.HandleGenerateContent)

	return &testHarness{router: router, database: database, draftGenerator: draftGenerator}
}

func authenticatedSessionCookie(t *testing.T, email string, name string) *http.Cookie {
	t.Helper()

	store := session.Store()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()

	sessionInstance, sessionErr := store.Get(request, constants.SessionName)
	require.NoError(t, sessionErr)

	sessionInstance.Values[constants.SessionKeyUserEmail] = email
	sessionInstance.Values[constants.SessionKeyUserName] = name
	sessionInstance.Values[constants.SessionKeyUserPicture] = ""

	require.NoError(t, sessionInstance.Save(request, recorder))

	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.SessionName {
			return cookie
		}
	}
	require.FailNow(t, "session cookie not found in recorder")
	return nil
}

func (harness *testHarness) perform(t *testing.T, method string, target string, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, target, nil)
	} else {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		request.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	harness.router.ServeHTTP(recorder, request)
	return recorder
}

func decodeJSONBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	payload := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return payload
}

func TestJSONRoutesRejectAnonymousRequests(t *testing.T) {
	harness := buildTestHarness(t)

	recorder := harness.perform(t, http.MethodGet, "/api/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestWebRoutesRedirectAnonymousRequestsToLogin(t *testing.T) {
	harness := buildTestHarness(t)

	recorder := harness.perform(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusFound, recorder.Code)
	require.Equal(t, constants.LoginPath, recorder.Header().Get("Location"))
}

func TestCurrentUserReflectsSessionAndUpsertedProfile(t *testing.T) {
	harness := buildTestHarness(t)
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	recorder := harness.perform(t, http.MethodGet, "/api/me", "", cookie)
	require.Equal(t, http.StatusOK, recorder.Code)

	payload := decodeJSONBody(t, recorder)
	require.Equal(t, testViewerEmail, payload["email"])
	require.Equal(t, testViewerName, payload["name"])
	require.Equal(t, userstate.DefaultRole, payload["role"])
}

func TestListDashboardsFiltersBySearchTerm(t *testing.T) {
	harness := buildTestHarness(t)
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	recorder := harness.perform(t, http.MethodGet, "/api/dashboards?q=GOOGLE", "", cookie)
	require.Equal(t, http.StatusOK, recorder.Code)

	var payload struct {
		Dashboards []struct {
			ID string `json:"id"`
		} `json:"dashboards"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.Len(t, payload.Dashboards, 1)
	require.Equal(t, "google-analytics", payload.Dashboards[0].ID)
}

func TestToggleFavoritePersistsAcrossRequests(t *testing.T) {
	harness := buildTestHarness(t)
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	recorder := harness.perform(t, http.MethodPost, "/api/favorites/linkedin", "", cookie)
	require.Equal(t, http.StatusOK, recorder.Code)
	payload := decodeJSONBody(t, recorder)
	require.Equal(t, true, payload["favorite"])

	recorder = harness.perform(t, http.MethodGet, "/api/me", "", cookie)
	payload = decodeJSONBody(t, recorder)
	require.Equal(t, []any{"linkedin"}, payload["favorites"])

	recorder = harness.perform(t, http.MethodPost, "/api/favorites/linkedin", "", cookie)
	payload = decodeJSONBody(t, recorder)
	require.Equal(t, false, payload["favorite"])
}

func TestToggleFavoriteRejectsUnknownDashboard(t *testing.T) {
	harness := buildTestHarness(t)
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	recorder := harness.perform(t, http.MethodPost, "/api/favorites/nonexistent", "", cookie)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestViewingDashboardFeedsRecentList(t *testing.T) {
	harness := buildTestHarness(t)
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	pageRecorder := harness.perform(t, http.MethodGet, "/dashboard/odoo", "", cookie)
	require.Equal(t, http.StatusOK, pageRecorder.Code)

	recorder := harness.perform(t, http.MethodGet, "/api/recent", "", cookie)
	require.Equal(t, http.StatusOK, recorder.Code)

	var payload struct {
		Dashboards []struct {
			ID string `json:"id"`
		} `json:"dashboards"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.Len(t, payload.Dashboards, 1)
	require.Equal(t, "odoo", payload.Dashboards[0].ID)
}

func TestNotepadRoundTrip(t *testing.T) {
	harness := buildTestHarness(t)
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	recorder := harness.perform(t, http.MethodPut, "/api/notepad", `{"text":"campaign ideas"}`, cookie)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = harness.perform(t, http.MethodGet, "/api/notepad", "", cookie)
	require.Equal(t, http.StatusOK, recorder.Code)
	payload := decodeJSONBody(t, recorder)
	require.Equal(t, "campaign ideas", payload["text"])
}

func TestGenerateContentReturnsDraftText(t *testing.T) {
	harness := buildTestHarness(t)
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	recorder := harness.perform(t, http.MethodPost, "/api/content-generator", `{"prompt":"grid automation"}`, cookie)
	require.Equal(t, http.StatusOK, recorder.Code)
	payload := decodeJSONBody(t, recorder)
	require.Equal(t, "Drafted post", payload["content"])
	require.Len(t, harness.draftGenerator.generated, 1)
	require.Equal(t, "grid automation", harness.draftGenerator.generated[0].Prompt)
}

func TestGenerateContentReportsMissingConfiguration(t *testing.T) {
	harness := buildTestHarness(t)
	harness.draftGenerator.configured = false
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	recorder := harness.perform(t, http.MethodPost, "/api/content-generator", `{"prompt":"anything"}`, cookie)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	payload := decodeJSONBody(t, recorder)
	require.Equal(t, "Configuration Error", payload["error"])
	require.NotEmpty(t, payload["message"])
	require.Empty(t, harness.draftGenerator.generated)
}

func TestGenerateContentReportsUpstreamFailures(t *testing.T) {
	harness := buildTestHarness(t)
	harness.draftGenerator.err = draft.ErrUpstreamFailure
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	recorder := harness.perform(t, http.MethodPost, "/api/content-generator", `{"prompt":"anything"}`, cookie)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	payload := decodeJSONBody(t, recorder)
	require.Equal(t, "Failed to generate content", payload["error"])
	require.NotEmpty(t, payload["message"])
}

func TestUnknownDashboardRedirectsHome(t *testing.T) {
	harness := buildTestHarness(t)
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	recorder := harness.perform(t, http.MethodGet, "/dashboard/nonexistent", "", cookie)
	require.Equal(t, http.StatusFound, recorder.Code)
	require.Equal(t, httpapi.HomeRoutePath, recorder.Header().Get("Location"))
}

func TestAssistantDashboardRedirectsToAssistantRoute(t *testing.T) {
	harness := buildTestHarness(t)
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	recorder := harness.perform(t, http.MethodGet, "/dashboard/ai-navigator", "", cookie)
	require.Equal(t, http.StatusFound, recorder.Code)
	require.Equal(t, httpapi.AssistantRoutePath, recorder.Header().Get("Location"))
}

func TestComparePageRendersBothColumns(t *testing.T) {
	harness := buildTestHarness(t)
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	recorder := harness.perform(t, http.MethodGet, "/compare?dashboards=linkedin,odoo", "", cookie)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "LinkedIn Analytics")
	require.Contains(t, recorder.Body.String(), "Business Analytics")
}

func TestComparePageDegradesUnresolvableColumn(t *testing.T) {
	harness := buildTestHarness(t)
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	recorder := harness.perform(t, http.MethodGet, "/compare?dashboards=linkedin,decommissioned", "", cookie)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "LinkedIn Analytics")
	require.Contains(t, recorder.Body.String(), "no longer available")
}

func TestHomePageRendersCatalogueForViewer(t *testing.T) {
	harness := buildTestHarness(t)
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	recorder := harness.perform(t, http.MethodGet, "/", "", cookie)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "LinkedIn Analytics")
	require.Contains(t, recorder.Body.String(), testViewerName)
	require.Contains(t, recorder.Body.String(), `id="hub-footer"`)
}

func TestUnmatchedRouteRendersNotFoundPage(t *testing.T) {
	harness := buildTestHarness(t)
	cookie := authenticatedSessionCookie(t, testViewerEmail, testViewerName)

	recorder := harness.perform(t, http.MethodGet, "/no-such-page", "", cookie)
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Contains(t, recorder.Body.String(), "Page not found")
}
