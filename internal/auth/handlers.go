package auth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temirov/GAuss/pkg/constants"
	"github.com/temirov/GAuss/pkg/gauss"
	"go.uber.org/zap"
)

const (
	headerForwarded         = "Forwarded"
	headerXForwardedProto   = "X-Forwarded-Proto"
	headerXForwardedScheme  = "X-Forwarded-Scheme"
	headerXForwardedHost    = "X-Forwarded-Host"
	headerXForwardedPort    = "X-Forwarded-Port"
	forwardedProtoPrefix    = "proto="
	forwardedHostPrefix     = "host="
	headerValueSeparator    = ","
	forwardedPairSeparator  = ";"
	urlSchemeHTTPS          = "https"
	logEventResolveHandlers = "resolve_oauth_handlers"
	createServiceError      = "create oauth service"
	createHandlersError     = "create oauth handlers"
	parseBaseURLError       = "parse public base url"
	resolveBaseURLError     = "resolve request base url"
)

// Config captures dependencies for building the Google OAuth handlers.
type Config struct {
	GoogleClientID     string
	GoogleClientSecret string
	PublicBaseURL      string
	LocalRedirectPath  string
	Scopes             []string
	LoginTemplate      string
	Logger             *zap.Logger
}

// Handlers exposes the OAuth login, callback, and logout endpoints. Callback
// URLs are rebuilt per request from forwarding headers so the service works
// unchanged behind a reverse proxy.
type Handlers struct {
	configuration     Config
	configuredBaseURL *url.URL
	defaultHandlers   *gauss.Handlers
	defaultServeMux   *http.ServeMux
	handlerCache      map[string]*gauss.Handlers
	handlerCacheMutex sync.RWMutex
	logger            *zap.Logger
}

// NewHandlers constructs a Handlers instance from GAuss primitives.
func NewHandlers(configuration Config) (*Handlers, error) {
	logger := configuration.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL, parseErr := url.Parse(configuration.PublicBaseURL)
	if parseErr != nil {
		return nil, fmt.Errorf("%s: %w", parseBaseURLError, parseErr)
	}

	gaussHandlers, buildErr := buildGaussHandlers(configuration, configuration.PublicBaseURL)
	if buildErr != nil {
		return nil, buildErr
	}

	defaultServeMux := http.NewServeMux()
	gaussHandlers.RegisterRoutes(defaultServeMux)

	return &Handlers{
		configuration:     configuration,
		configuredBaseURL: baseURL,
		defaultHandlers:   gaussHandlers,
		defaultServeMux:   defaultServeMux,
		handlerCache:      make(map[string]*gauss.Handlers),
		logger:            logger,
	}, nil
}

// RegisterRoutes wires the OAuth endpoints to the provided ServeMux.
func (handlers *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(constants.LoginPath, handlers.serveLogin)
	mux.HandleFunc(constants.GoogleAuthPath, handlers.handleGoogleAuth)
	mux.HandleFunc(constants.CallbackPath, handlers.handleCallback)
	mux.HandleFunc(constants.LogoutPath, handlers.defaultHandlers.Logout)
}

func buildGaussHandlers(configuration Config, baseURL string) (*gauss.Handlers, error) {
	serviceInstance, serviceErr := gauss.NewService(
		configuration.GoogleClientID,
		configuration.GoogleClientSecret,
		baseURL,
		configuration.LocalRedirectPath,
		configuration.Scopes,
		configuration.LoginTemplate,
	)
	if serviceErr != nil {
		return nil, fmt.Errorf("%s: %w", createServiceError, serviceErr)
	}

	gaussHandlers, handlersErr := gauss.NewHandlers(serviceInstance)
	if handlersErr != nil {
		return nil, fmt.Errorf("%s: %w", createHandlersError, handlersErr)
	}
	return gaussHandlers, nil
}

func (handlers *Handlers) serveLogin(responseWriter http.ResponseWriter, request *http.Request) {
	handlers.defaultServeMux.ServeHTTP(responseWriter, request)
}

func (handlers *Handlers) handleGoogleAuth(responseWriter http.ResponseWriter, request *http.Request) {
	dynamicHandlers, resolutionErr := handlers.handlersForRequest(request)
	if resolutionErr != nil {
		handlers.logger.Warn(logEventResolveHandlers, zap.Error(resolutionErr))
		http.Error(responseWriter, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	dynamicHandlers.Login(responseWriter, request)
}

func (handlers *Handlers) handleCallback(responseWriter http.ResponseWriter, request *http.Request) {
	dynamicHandlers, resolutionErr := handlers.handlersForRequest(request)
	if resolutionErr != nil {
		handlers.logger.Warn(logEventResolveHandlers, zap.Error(resolutionErr))
		http.Error(responseWriter, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	dynamicHandlers.Callback(responseWriter, request)
}

func (handlers *Handlers) handlersForRequest(request *http.Request) (*gauss.Handlers, error) {
	baseURL, baseErr := handlers.baseForRequest(request)
	if baseErr != nil {
		return nil, baseErr
	}

	handlers.handlerCacheMutex.RLock()
	cachedHandlers := handlers.handlerCache[baseURL]
	handlers.handlerCacheMutex.RUnlock()
	if cachedHandlers != nil {
		return cachedHandlers, nil
	}

	handlers.handlerCacheMutex.Lock()
	defer handlers.handlerCacheMutex.Unlock()

	cachedHandlers = handlers.handlerCache[baseURL]
	if cachedHandlers != nil {
		return cachedHandlers, nil
	}

	gaussHandlers, buildErr := buildGaussHandlers(handlers.configuration, baseURL)
	if buildErr != nil {
		return nil, buildErr
	}

	handlers.handlerCache[baseURL] = gaussHandlers
	return gaussHandlers, nil
}

func (handlers *Handlers) baseForRequest(request *http.Request) (string, error) {
	scheme := handlers.resolveScheme(request)
	host := handlers.resolveHost(request)
	if host == "" {
		return "", fmt.Errorf("%s: %w", resolveBaseURLError, fmt.Errorf("empty host"))
	}

	port := firstHeaderValue(request.Header.Get(headerXForwardedPort))
	if port != "" && !strings.Contains(host, ":") {
		host = host + ":" + port
	}

	baseCopy := *handlers.configuredBaseURL
	baseCopy.Scheme = scheme
	baseCopy.Host = host

	return baseCopy.String(), nil
}

func (handlers *Handlers) resolveScheme(request *http.Request) string {
	if forwardedProto := extractForwardedDirective(request.Header.Get(headerForwarded), forwardedProtoPrefix); forwardedProto != "" {
		return strings.ToLower(forwardedProto)
	}

	if protoHeader := firstHeaderValue(request.Header.Get(headerXForwardedProto)); protoHeader != "" {
		return strings.ToLower(protoHeader)
	}

	if schemeHeader := firstHeaderValue(request.Header.Get(headerXForwardedScheme)); schemeHeader != "" {
		return strings.ToLower(schemeHeader)
	}

	if request.TLS != nil {
		return urlSchemeHTTPS
	}

	if handlers.configuredBaseURL.Scheme != "" {
		return strings.ToLower(handlers.configuredBaseURL.Scheme)
	}

	return urlSchemeHTTPS
}

func (handlers *Handlers) resolveHost(request *http.Request) string {
	if forwardedHost := extractForwardedDirective(request.Header.Get(headerForwarded), forwardedHostPrefix); forwardedHost != "" {
		return forwardedHost
	}

	if hostHeader := firstHeaderValue(request.Header.Get(headerXForwardedHost)); hostHeader != "" {
		return hostHeader
	}

	if request.Host != "" {
		return request.Host
	}

	return handlers.configuredBaseURL.Host
}

func firstHeaderValue(rawValue string) string {
	if rawValue == "" {
		return ""
	}

	for _, segment := range strings.Split(rawValue, headerValueSeparator) {
		trimmedSegment := strings.TrimSpace(segment)
		if trimmedSegment != "" {
			return trimmedSegment
		}
	}

	return ""
}

func extractForwardedDirective(headerValue string, prefix string) string {
	if headerValue == "" {
		return ""
	}

	for _, directive := range strings.Split(headerValue, headerValueSeparator) {
		for _, pair := range strings.Split(strings.TrimSpace(directive), forwardedPairSeparator) {
			trimmedPair := strings.TrimSpace(pair)
			if trimmedPair == "" {
				continue
			}
			if !strings.HasPrefix(strings.ToLower(trimmedPair), prefix) {
				continue
			}
			value := strings.Trim(strings.TrimSpace(trimmedPair[len(prefix):]), "\"")
			if value != "" {
				return value
			}
		}
	}

	return ""
}
