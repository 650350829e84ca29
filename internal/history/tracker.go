package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/EnspecPower/analytics_hub/internal/catalog"
	"github.com/EnspecPower/analytics_hub/internal/model"
)

const (
	// StoredHistoryMaximum bounds how many identifiers the durable list retains.
	// Display limits are independent and typically smaller.
	StoredHistoryMaximum = 12
	// DefaultDisplayLimit is how many recently viewed dashboards the catalogue page shows.
	DefaultDisplayLimit = 3

	errorMessageLoadHistory = "history: load view history"
	errorMessageSaveHistory = "history: save view history"

	logEventCorruptHistory = "corrupt_history_state"
	logFieldEmail          = "email"
)

// Tracker records dashboard views per user and reads them back resolved
// through the catalogue.
type Tracker struct {
	database  *gorm.DB
	catalogue *catalog.Catalogue
	logger    *zap.Logger
}

// NewTracker creates a Tracker backed by the provided database and catalogue.
func NewTracker(database *gorm.DB, catalogue *catalog.Catalogue, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{database: database, catalogue: catalogue, logger: logger}
}

// RecordView moves the dashboard identifier to the front of the user's stored
// history, deduplicating, and truncates the stored list at StoredHistoryMaximum.
// Views by users without a stored profile are dropped silently.
func (tracker *Tracker) RecordView(ctx context.Context, email string, dashboardID string) error {
	normalizedEmail := strings.ToLower(strings.TrimSpace(email))
	trimmedDashboardID := strings.TrimSpace(dashboardID)
	if normalizedEmail == "" || trimmedDashboardID == "" {
		return nil
	}

	var storedUser model.User
	queryErr := tracker.database.WithContext(ctx).First(&storedUser, "email = ?", normalizedEmail).Error
	if errors.Is(queryErr, gorm.ErrRecordNotFound) {
		return nil
	}
	if queryErr != nil {
		return fmt.Errorf("%s: %w", errorMessageLoadHistory, queryErr)
	}

	viewedIdentifiers := tracker.decodeStoredHistory(normalizedEmail, storedUser.RecentViewsJSON)
	viewedIdentifiers = frontInsert(viewedIdentifiers, trimmedDashboardID, StoredHistoryMaximum)

	encodedHistory, encodeErr := json.Marshal(viewedIdentifiers)
	if encodeErr != nil {
		return fmt.Errorf("%s: %w", errorMessageSaveHistory, encodeErr)
	}

	updateErr := tracker.database.WithContext(ctx).
		Model(&model.User{}).
		Where("email = ?", normalizedEmail).
		Update("recent_views_json", string(encodedHistory)).Error
	if updateErr != nil {
		return fmt.Errorf("%s: %w", errorMessageSaveHistory, updateErr)
	}
	return nil
}

// Recent returns at most limit recently viewed dashboards, most recent first,
// resolved through the catalogue. Identifiers no longer present in the
// catalogue are dropped silently; empty or corrupt stored state yields an
// empty slice, never an error.
func (tracker *Tracker) Recent(ctx context.Context, email string, limit int) []catalog.DashboardConfig {
	normalizedEmail := strings.ToLower(strings.TrimSpace(email))
	if normalizedEmail == "" || limit <= 0 {
		return []catalog.DashboardConfig{}
	}

	var storedUser model.User
	queryErr := tracker.database.WithContext(ctx).First(&storedUser, "email = ?", normalizedEmail).Error
	if queryErr != nil {
		if !errors.Is(queryErr, gorm.ErrRecordNotFound) {
			tracker.logger.Warn(logEventCorruptHistory, zap.String(logFieldEmail, normalizedEmail), zap.Error(queryErr))
		}
		return []catalog.DashboardConfig{}
	}

	resolvedEntries := make([]catalog.DashboardConfig, 0, limit)
	for _, viewedID := range tracker.decodeStoredHistory(normalizedEmail, storedUser.RecentViewsJSON) {
		entry, lookupErr := tracker.catalogue.Lookup(viewedID)
		if lookupErr != nil {
			continue
		}
		resolvedEntries = append(resolvedEntries, entry)
		if len(resolvedEntries) == limit {
			break
		}
	}
	return resolvedEntries
}

func (tracker *Tracker) decodeStoredHistory(email string, encodedHistory string) []string {
	if strings.TrimSpace(encodedHistory) == "" {
		return []string{}
	}

	var identifiers []string
	if unmarshalErr := json.Unmarshal([]byte(encodedHistory), &identifiers); unmarshalErr != nil {
		tracker.logger.Warn(logEventCorruptHistory, zap.String(logFieldEmail, email), zap.Error(unmarshalErr))
		return []string{}
	}
	return identifiers
}

func frontInsert(identifiers []string, dashboardID string, maximumLength int) []string {
	updatedIdentifiers := make([]string, 0, maximumLength)
	updatedIdentifiers = append(updatedIdentifiers, dashboardID)
	for _, identifier := range identifiers {
		if identifier == dashboardID {
			continue
		}
		updatedIdentifiers = append(updatedIdentifiers, identifier)
		if len(updatedIdentifiers) == maximumLength {
			break
		}
	}
	return updatedIdentifiers
}
