package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/temirov/GAuss/pkg/constants"
	"github.com/temirov/GAuss/pkg/session"
	"go.uber.org/zap"

	"github.com/EnspecPower/analytics_hub/internal/userstate"
)

const (
	contextKeyCurrentUser = "httpapi_current_user"
	authErrorUnauthorized = "unauthorized"
	logEventLoadSession   = "load_session"
	logEventRegisterLogin = "register_login"
)

// CurrentUser captures the authenticated account metadata handlers rely on.
type CurrentUser struct {
	Email      string
	Name       string
	PictureURL string
}

// ProfileRegistrar upserts the viewer's profile when a session is first seen.
type ProfileRegistrar interface {
	Login(ctx context.Context, profile userstate.UserProfile) (userstate.UserProfile, error)
}

// AuthManager resolves the signed-in viewer from the OAuth session cookie.
type AuthManager struct {
	logger                 *zap.Logger
	sessionStore           *sessions.CookieStore
	profileRegistrar       ProfileRegistrar
	registeredViewers      map[string]struct{}
	registeredViewersMutex sync.Mutex
}

// NewAuthManager constructs an AuthManager backed by the shared session store.
// The profile registrar may be nil when profile persistence is not wired.
func NewAuthManager(logger *zap.Logger, profileRegistrar ProfileRegistrar) *AuthManager {
	return &AuthManager{
		logger:            logger,
		sessionStore:      session.Store(),
		profileRegistrar:  profileRegistrar,
		registeredViewers: make(map[string]struct{}),
	}
}

// RequireAuthenticatedJSON enforces authentication for JSON API routes.
func (authManager *AuthManager) RequireAuthenticatedJSON() gin.HandlerFunc {
	return func(context *gin.Context) {
		if _, ok := authManager.ensureUser(context); !ok {
			context.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{jsonKeyError: authErrorUnauthorized})
			return
		}
		context.Next()
	}
}

// RequireAuthenticatedWeb redirects unauthenticated page requests to login.
func (authManager *AuthManager) RequireAuthenticatedWeb() gin.HandlerFunc {
	return func(context *gin.Context) {
		if _, ok := authManager.ensureUser(context); !ok {
			context.Redirect(http.StatusFound, constants.LoginPath)
			context.Abort()
			return
		}
		context.Next()
	}
}

// CurrentUser returns the authenticated account for the request if available.
func (authManager *AuthManager) CurrentUser(context *gin.Context) (*CurrentUser, bool) {
	return authManager.ensureUser(context)
}

// CurrentUserFromContext loads the current user from the request context.
func CurrentUserFromContext(context *gin.Context) (*CurrentUser, bool) {
	value, exists := context.Get(contextKeyCurrentUser)
	if !exists {
		return nil, false
	}
	currentUser, ok := value.(*CurrentUser)
	return currentUser, ok
}

func (authManager *AuthManager) ensureUser(context *gin.Context) (*CurrentUser, bool) {
	if currentUser, exists := CurrentUserFromContext(context); exists {
		return currentUser, true
	}

	sessionInstance, sessionErr := authManager.sessionStore.Get(context.Request, constants.SessionName)
	if sessionErr != nil {
		authManager.logger.Warn(logEventLoadSession, zap.Error(sessionErr))
		return nil, false
	}

	email := extractString(sessionInstance.Values[constants.SessionKeyUserEmail])
	if email == "" {
		return nil, false
	}

	name := extractString(sessionInstance.Values[constants.SessionKeyUserName])
	pictureURL := extractString(sessionInstance.Values[constants.SessionKeyUserPicture])

	currentUser := &CurrentUser{
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
	}

	authManager.registerLogin(context, currentUser)

	context.Set(contextKeyCurrentUser, currentUser)
	return currentUser, true
}

// registerLogin upserts the viewer's profile once per process lifetime. A
// failed upsert is logged and retried on the next request from that viewer.
func (authManager *AuthManager) registerLogin(context *gin.Context, currentUser *CurrentUser) {
	if authManager.profileRegistrar == nil {
		return
	}

	lowercaseEmail := strings.ToLower(currentUser.Email)
	authManager.registeredViewersMutex.Lock()
	defer authManager.registeredViewersMutex.Unlock()
	if _, alreadyRegistered := authManager.registeredViewers[lowercaseEmail]; alreadyRegistered {
		return
	}

	loginProfile := userstate.UserProfile{Email: currentUser.Email, Name: currentUser.Name}
	if _, loginErr := authManager.profileRegistrar.Login(context.Request.Context(), loginProfile); loginErr != nil {
		authManager.logger.Warn(logEventRegisterLogin, zap.Error(loginErr))
		return
	}
	authManager.registeredViewers[lowercaseEmail] = struct{}{}
}

func extractString(value interface{}) string {
	text, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}
