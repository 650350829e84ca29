package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/EnspecPower/analytics_hub/internal/catalog"
	"github.com/EnspecPower/analytics_hub/internal/draft"
	"github.com/EnspecPower/analytics_hub/internal/history"
	"github.com/EnspecPower/analytics_hub/internal/userstate"
)

const (
	jsonKeyError     = "error"
	jsonKeyMessage   = "message"
	jsonKeyEmail     = "email"
	jsonKeyName      = "name"
	jsonKeyRole      = "role"
	jsonKeyAvatar    = "avatar"
	jsonKeyAvatarURL = "url"
	jsonKeyFavorites = "favorites"
	jsonKeyFavorite  = "favorite"
	jsonKeyText      = "text"
	jsonKeySaved     = "saved"
	jsonKeyContent   = "content"

	errorValueInvalidJSON        = "invalid_json"
	errorValueQueryFailed        = "query_failed"
	errorValueSaveFailed         = "save_failed"
	errorValueUnknownDashboard   = "unknown_dashboard"
	errorValueConfigurationError = "Configuration Error"
	errorValueGenerationFailed   = "Failed to generate content"

	messageMissingUpstreamKey = "The content generation service is not configured. Contact your administrator."
	messageGenerationFailed   = "The content generation service is temporarily unavailable. Try again shortly."

	searchQueryParameter = "q"
	limitQueryParameter  = "limit"

	logEventLoadProfile    = "load_profile"
	logEventToggleFavorite = "toggle_favorite"
	logEventLoadNotepad    = "load_notepad"
	logEventSaveNotepad    = "save_notepad"
	logEventGenerateDraft  = "generate_draft"
)

// DraftGenerator produces content drafts from user-authored prompts.
type DraftGenerator interface {
	Configured() bool
	GenerateDraft(ctx context.Context, request draft.DraftRequest) (string, error)
}

// APIHandlers serves the authenticated JSON surface.
type APIHandlers struct {
	catalogue      *catalog.Catalogue
	userState      *userstate.Store
	historyTracker *history.Tracker
	draftGenerator DraftGenerator
	authManager    *AuthManager
	logger         *zap.Logger
}

// NewAPIHandlers constructs the JSON API handler set.
func NewAPIHandlers(
	catalogue *catalog.Catalogue,
	userState *userstate.Store,
	historyTracker *history.Tracker,
	draftGenerator DraftGenerator,
	authManager *AuthManager,
	logger *zap.Logger,
) *APIHandlers {
	return &APIHandlers{
		catalogue:      catalogue,
		userState:      userState,
		historyTracker: historyTracker,
		draftGenerator: draftGenerator,
		authManager:    authManager,
		logger:         logger,
	}
}

type dashboardSummaryResponse struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Icon             string `json:"icon"`
	PresentationKind string `json:"presentation_kind"`
	Favorite         bool   `json:"favorite"`
}

type listDashboardsResponse struct {
	Dashboards []dashboardSummaryResponse `json:"dashboards"`
}

// HandleCurrentUser returns the signed-in viewer's profile.
func (handlers *APIHandlers) HandleCurrentUser(context *gin.Context) {
	currentUser, ok := handlers.authManager.CurrentUser(context)
	if !ok {
		context.JSON(http.StatusUnauthorized, gin.H{jsonKeyError: authErrorUnauthorized})
		return
	}

	profile, _, profileErr := handlers.userState.Current(context.Request.Context(), currentUser.Email)
	if profileErr != nil {
		handlers.logger.Warn(logEventLoadProfile, zap.Error(profileErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueQueryFailed})
		return
	}

	context.JSON(http.StatusOK, gin.H{
		jsonKeyEmail:     currentUser.Email,
		jsonKeyName:      currentUser.Name,
		jsonKeyRole:      profile.Role,
		jsonKeyAvatar:    gin.H{jsonKeyAvatarURL: currentUser.PictureURL},
		jsonKeyFavorites: profile.FavoriteReports,
	})
}

// HandleListDashboards returns the catalogue, optionally filtered by the q
// parameter, with each entry's favorite flag for the viewer.
func (handlers *APIHandlers) HandleListDashboards(context *gin.Context) {
	currentUser, _ := handlers.authManager.CurrentUser(context)

	profile := userstate.UserProfile{}
	if currentUser != nil {
		loadedProfile, _, profileErr := handlers.userState.Current(context.Request.Context(), currentUser.Email)
		if profileErr != nil {
			handlers.logger.Warn(logEventLoadProfile, zap.Error(profileErr))
		} else {
			profile = loadedProfile
		}
	}

	matchingEntries := catalog.Filter(handlers.catalogue.All(), context.Query(searchQueryParameter))
	summaries := make([]dashboardSummaryResponse, 0, len(matchingEntries))
	for _, entry := range matchingEntries {
		summaries = append(summaries, dashboardSummaryResponse{
			ID:               entry.ID,
			Title:            entry.Title,
			Description:      entry.Description,
			Icon:             string(entry.Icon),
			PresentationKind: string(entry.PresentationKind),
			Favorite:         profile.IsFavorite(entry.ID),
		})
	}

	context.JSON(http.StatusOK, listDashboardsResponse{Dashboards: summaries})
}

// HandleRecentDashboards returns the viewer's recently viewed dashboards,
// most recent first.
func (handlers *APIHandlers) HandleRecentDashboards(context *gin.Context) {
	currentUser, ok := handlers.authManager.CurrentUser(context)
	if !ok {
		context.JSON(http.StatusUnauthorized, gin.H{jsonKeyError: authErrorUnauthorized})
		return
	}

	displayLimit := history.DefaultDisplayLimit
	if rawLimit := context.Query(limitQueryParameter); rawLimit != "" {
		if parsedLimit, parseErr := strconv.Atoi(rawLimit); parseErr == nil && parsedLimit > 0 {
			displayLimit = parsedLimit
		}
	}

	recentEntries := handlers.historyTracker.Recent(context.Request.Context(), currentUser.Email, displayLimit)
	summaries := make([]dashboardSummaryResponse, 0, len(recentEntries))
	for _, entry := range recentEntries {
		summaries = append(summaries, dashboardSummaryResponse{
			ID:               entry.ID,
			Title:            entry.Title,
			Description:      entry.Description,
			Icon:             string(entry.Icon),
			PresentationKind: string(entry.PresentationKind),
		})
	}

	context.JSON(http.StatusOK, listDashboardsResponse{Dashboards: summaries})
}

// HandleToggleFavorite flips the viewer's favorite flag for a dashboard.
func (handlers *APIHandlers) HandleToggleFavorite(context *gin.Context) {
	currentUser, ok := handlers.authManager.CurrentUser(context)
	if !ok {
		context.JSON(http.StatusUnauthorized, gin.H{jsonKeyError: authErrorUnauthorized})
		return
	}

	dashboardID := context.Param(routeParameterDashboardID)
	if _, lookupErr := handlers.catalogue.Lookup(dashboardID); lookupErr != nil {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueUnknownDashboard})
		return
	}

	profile, _, toggleErr := handlers.userState.ToggleFavorite(context.Request.Context(), currentUser.Email, dashboardID)
	if toggleErr != nil {
		handlers.logger.Warn(logEventToggleFavorite, zap.Error(toggleErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}

	context.JSON(http.StatusOK, gin.H{
		jsonKeyFavorite:  profile.IsFavorite(dashboardID),
		jsonKeyFavorites: profile.FavoriteReports,
	})
}

// HandleGetNotepad returns the viewer's saved notepad text.
func (handlers *APIHandlers) HandleGetNotepad(context *gin.Context) {
	currentUser, ok := handlers.authManager.CurrentUser(context)
	if !ok {
		context.JSON(http.StatusUnauthorized, gin.H{jsonKeyError: authErrorUnauthorized})
		return
	}

	notepadText, notepadErr := handlers.userState.Notepad(context.Request.Context(), currentUser.Email)
	if notepadErr != nil {
		handlers.logger.Warn(logEventLoadNotepad, zap.Error(notepadErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueQueryFailed})
		return
	}

	context.JSON(http.StatusOK, gin.H{jsonKeyText: notepadText})
}

type saveNotepadRequest struct {
	Text string `json:"text"`
}

// HandleSaveNotepad replaces the viewer's notepad text.
func (handlers *APIHandlers) HandleSaveNotepad(context *gin.Context) {
	currentUser, ok := handlers.authManager.CurrentUser(context)
	if !ok {
		context.JSON(http.StatusUnauthorized, gin.H{jsonKeyError: authErrorUnauthorized})
		return
	}

	var requestPayload saveNotepadRequest
	if bindErr := context.ShouldBindJSON(&requestPayload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	saved, saveErr := handlers.userState.SaveNotepad(context.Request.Context(), currentUser.Email, requestPayload.Text)
	if saveErr != nil {
		handlers.logger.Warn(logEventSaveNotepad, zap.Error(saveErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}

	context.JSON(http.StatusOK, gin.H{jsonKeySaved: saved})
}

// HandleGenerateContent proxies a draft request to the completion service.
// Both a missing credential and an upstream failure surface as a 500 with an
// error label and a human-readable message.
func (handlers *APIHandlers) HandleGenerateContent(context *gin.Context) {
	if !handlers.draftGenerator.Configured() {
		context.JSON(http.StatusInternalServerError, gin.H{
			jsonKeyError:   errorValueConfigurationError,
			jsonKeyMessage: messageMissingUpstreamKey,
		})
		return
	}

	var requestPayload draft.DraftRequest
	if bindErr := context.ShouldBindJSON(&requestPayload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	draftText, generateErr := handlers.draftGenerator.GenerateDraft(context.Request.Context(), requestPayload)
	if generateErr != nil {
		handlers.logger.Warn(logEventGenerateDraft, zap.Error(generateErr))
		context.JSON(http.StatusInternalServerError, gin.H{
			jsonKeyError:   errorValueGenerationFailed,
			jsonKeyMessage: messageGenerationFailed,
		})
		return
	}

	context.JSON(http.StatusOK, gin.H{jsonKeyContent: draftText})
}
