package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/temirov/GAuss/pkg/constants"

	"github.com/EnspecPower/analytics_hub/internal/auth"
	"github.com/EnspecPower/analytics_hub/internal/compare"
	"github.com/EnspecPower/analytics_hub/internal/httpapi"
)

const (
	apiRoutePrefix            = "/api"
	apiRouteMe                = "/me"
	apiRouteDashboards        = "/dashboards"
	apiRouteRecent            = "/recent"
	apiRouteToggleFavorite    = "/favorites/:dashboard_id"
	apiRouteNotepad           = "/notepad"
	apiRouteContentGenerator  = "/content-generator"
	corsHeaderAuthorization   = "Authorization"
	corsHeaderContentType     = "Content-Type"
	httpMethodGet             = "GET"
	httpMethodOptions         = "OPTIONS"
	httpMethodPost            = "POST"
	httpMethodPut             = "PUT"
	corsPreflightCacheMaxAge  = 12 * time.Hour
)

var (
	corsAllowedMethods = []string{httpMethodGet, httpMethodPost, httpMethodPut, httpMethodOptions}
	corsAllowedHeaders = []string{corsHeaderAuthorization, corsHeaderContentType}
	corsExposedHeaders = []string{corsHeaderContentType}
)

func registerFrontendRoutes(
	router *gin.Engine,
	authManager *httpapi.AuthManager,
	webHandlers *httpapi.WebHandlers,
	oauthHandlers *auth.Handlers,
) {
	oauthServeMux := http.NewServeMux()
	oauthHandlers.RegisterRoutes(oauthServeMux)
	router.Any(constants.LoginPath, gin.WrapH(oauthServeMux))
	router.Any(constants.GoogleAuthPath, gin.WrapH(oauthServeMux))
	router.Any(constants.CallbackPath, gin.WrapH(oauthServeMux))
	router.Any(constants.LogoutPath, gin.WrapH(oauthServeMux))

	router.GET(httpapi.HomeRoutePath, authManager.RequireAuthenticatedWeb(), webHandlers.RenderHome)
	router.GET(httpapi.DashboardRoutePath, authManager.RequireAuthenticatedWeb(), webHandlers.RenderDashboard)
	router.GET(compare.ComparisonRoutePath, authManager.RequireAuthenticatedWeb(), webHandlers.RenderCompare)
	router.GET(httpapi.AssistantRoutePath, authManager.RequireAuthenticatedWeb(), webHandlers.RenderAssistant)
	router.GET(httpapi.ProfileRoutePath, authManager.RequireAuthenticatedWeb(), webHandlers.RenderProfile)

	router.NoRoute(webHandlers.RenderNotFound)
}

func registerBackendRoutes(
	router *gin.Engine,
	authManager *httpapi.AuthManager,
	apiHandlers *httpapi.APIHandlers,
	authenticatedOrigin string,
) {
	apiGroup := router.Group(apiRoutePrefix)
	apiGroup.Use(cors.New(cors.Config{
		AllowOrigins:     []string{authenticatedOrigin},
		AllowMethods:     corsAllowedMethods,
		AllowHeaders:     corsAllowedHeaders,
		ExposeHeaders:    corsExposedHeaders,
		AllowCredentials: true,
		MaxAge:           corsPreflightCacheMaxAge,
	}))
	apiGroup.Use(authManager.RequireAuthenticatedJSON())
	apiGroup.GET(apiRouteMe, apiHandlers.HandleCurrentUser)
	apiGroup.GET(apiRouteDashboards, apiHandlers.HandleListDashboards)
	apiGroup.GET(apiRouteRecent, apiHandlers.HandleRecentDashboards)
	apiGroup.POST(apiRouteToggleFavorite, apiHandlers.HandleToggleFavorite)
	apiGroup.GET(apiRouteNotepad, apiHandlers.HandleGetNotepad)
	apiGroup.PUT(apiRouteNotepad, apiHandlers.HandleSaveNotepad)
	apiGroup.POST(apiRouteContentGenerator, apiHandlers.HandleGenerateContent)
}
