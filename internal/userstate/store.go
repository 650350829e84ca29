package userstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/EnspecPower/analytics_hub/internal/model"
	"github.com/EnspecPower/analytics_hub/internal/storage"
)

const (
	// DefaultRole is assigned to profiles created without an explicit role.
	DefaultRole = "user"

	errorMessageMissingEmail = "userstate: missing profile email"
	errorMessageLoadProfile  = "userstate: load profile"
	errorMessageSaveProfile  = "userstate: save profile"
	errorMessageClearProfile = "userstate: clear profile"

	logEventCorruptFavorites = "corrupt_favorites_state"
	logFieldEmail            = "email"
)

// ErrMissingEmail indicates an operation was attempted without a profile email.
var ErrMissingEmail = errors.New(errorMessageMissingEmail)

// UserProfile is the durable per-user state surfaced to handlers and templates.
type UserProfile struct {
	ID              string
	Name            string
	Email           string
	Role            string
	FavoriteReports []string
}

// IsFavorite reports whether the profile has marked the dashboard as a favorite.
func (profile UserProfile) IsFavorite(dashboardID string) bool {
	for _, favoriteID := range profile.FavoriteReports {
		if favoriteID == dashboardID {
			return true
		}
	}
	return false
}

// Store persists user profiles and their mutable preferences. Every mutation
// re-persists the full profile before returning so a restart never loses a
// completed toggle.
type Store struct {
	database *gorm.DB
	logger   *zap.Logger
}

// NewStore creates a Store backed by the provided database.
func NewStore(database *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{database: database, logger: logger}
}

// Current returns the stored profile for an email, reporting absence without error.
func (store *Store) Current(ctx context.Context, email string) (UserProfile, bool, error) {
	normalizedEmail := normalizeEmail(email)
	if normalizedEmail == "" {
		return UserProfile{}, false, nil
	}

	var storedUser model.User
	queryErr := store.database.WithContext(ctx).First(&storedUser, "email = ?", normalizedEmail).Error
	if errors.Is(queryErr, gorm.ErrRecordNotFound) {
		return UserProfile{}, false, nil
	}
	if queryErr != nil {
		return UserProfile{}, false, fmt.Errorf("%s: %w", errorMessageLoadProfile, queryErr)
	}

	return store.profileFromStoredUser(storedUser), true, nil
}

// Login upserts the profile keyed by email and persists it. An existing profile
// keeps its identifier and favorites; name and role are refreshed from the
// identity provider.
func (store *Store) Login(ctx context.Context, profile UserProfile) (UserProfile, error) {
	normalizedEmail := normalizeEmail(profile.Email)
	if normalizedEmail == "" {
		return UserProfile{}, ErrMissingEmail
	}

	role := strings.TrimSpace(profile.Role)
	if role == "" {
		role = DefaultRole
	}

	var storedUser model.User
	queryErr := store.database.WithContext(ctx).First(&storedUser, "email = ?", normalizedEmail).Error
	if queryErr != nil && !errors.Is(queryErr, gorm.ErrRecordNotFound) {
		return UserProfile{}, fmt.Errorf("%s: %w", errorMessageLoadProfile, queryErr)
	}
	if errors.Is(queryErr, gorm.ErrRecordNotFound) {
		storedUser = model.User{ID: storage.NewID(), Email: normalizedEmail}
	}

	storedUser.Name = strings.TrimSpace(profile.Name)
	storedUser.Role = role

	if saveErr := store.database.WithContext(ctx).Save(&storedUser).Error; saveErr != nil {
		return UserProfile{}, fmt.Errorf("%s: %w", errorMessageSaveProfile, saveErr)
	}

	return store.profileFromStoredUser(storedUser), nil
}

// Logout removes the durable profile state for an email. A missing profile is not an error.
func (store *Store) Logout(ctx context.Context, email string) error {
	normalizedEmail := normalizeEmail(email)
	if normalizedEmail == "" {
		return nil
	}

	deleteErr := store.database.WithContext(ctx).Delete(&model.User{}, "email = ?", normalizedEmail).Error
	if deleteErr != nil {
		return fmt.Errorf("%s: %w", errorMessageClearProfile, deleteErr)
	}
	return nil
}

// ToggleFavorite adds the dashboard to the profile's favorites if absent and
// removes it otherwise, persisting before returning. Without a stored profile
// the call is a no-op. Two toggles of the same id restore the original set.
func (store *Store) ToggleFavorite(ctx context.Context, email string, dashboardID string) (UserProfile, bool, error) {
	normalizedEmail := normalizeEmail(email)
	if normalizedEmail == "" {
		return UserProfile{}, false, nil
	}

	var storedUser model.User
	queryErr := store.database.WithContext(ctx).First(&storedUser, "email = ?", normalizedEmail).Error
	if errors.Is(queryErr, gorm.ErrRecordNotFound) {
		return UserProfile{}, false, nil
	}
	if queryErr != nil {
		return UserProfile{}, false, fmt.Errorf("%s: %w", errorMessageLoadProfile, queryErr)
	}

	favoriteIdentifiers := store.decodeIdentifierList(storedUser.Email, storedUser.FavoritesJSON)
	favoriteIdentifiers = toggleIdentifier(favoriteIdentifiers, strings.TrimSpace(dashboardID))

	encodedFavorites, encodeErr := json.Marshal(favoriteIdentifiers)
	if encodeErr != nil {
		return UserProfile{}, false, fmt.Errorf("%s: %w", errorMessageSaveProfile, encodeErr)
	}
	storedUser.FavoritesJSON = string(encodedFavorites)

	if saveErr := store.database.WithContext(ctx).Save(&storedUser).Error; saveErr != nil {
		return UserProfile{}, false, fmt.Errorf("%s: %w", errorMessageSaveProfile, saveErr)
	}

	return store.profileFromStoredUser(storedUser), true, nil
}

func (store *Store) profileFromStoredUser(storedUser model.User) UserProfile {
	return UserProfile{
		ID:              storedUser.ID,
		Name:            storedUser.Name,
		Email:           storedUser.Email,
		Role:            storedUser.Role,
		FavoriteReports: store.decodeIdentifierList(storedUser.Email, storedUser.FavoritesJSON),
	}
}

// decodeIdentifierList treats corrupt stored JSON as absent state.
func (store *Store) decodeIdentifierList(email string, encodedList string) []string {
	if strings.TrimSpace(encodedList) == "" {
		return []string{}
	}

	var identifiers []string
	if unmarshalErr := json.Unmarshal([]byte(encodedList), &identifiers); unmarshalErr != nil {
		store.logger.Warn(logEventCorruptFavorites, zap.String(logFieldEmail, email), zap.Error(unmarshalErr))
		return []string{}
	}
	return identifiers
}

func toggleIdentifier(identifiers []string, dashboardID string) []string {
	if dashboardID == "" {
		return identifiers
	}

	withoutTarget := make([]string, 0, len(identifiers))
	targetPresent := false
	for _, identifier := range identifiers {
		if identifier == dashboardID {
			targetPresent = true
			continue
		}
		withoutTarget = append(withoutTarget, identifier)
	}
	if targetPresent {
		return withoutTarget
	}
	return append(withoutTarget, dashboardID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
