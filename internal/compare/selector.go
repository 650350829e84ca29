package compare

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/EnspecPower/analytics_hub/internal/catalog"
)

const (
	// MaximumSelection is the largest number of dashboards a comparison can hold.
	MaximumSelection = 2

	// ComparisonRoutePath is the web route that renders a committed comparison.
	ComparisonRoutePath = "/compare"
	// ComparisonQueryParameter carries the comma-separated dashboard identifiers.
	ComparisonQueryParameter = "dashboards"

	identifierSeparator = ","

	errorMessageCommitNotReady = "compare: selection is not ready to compare"
)

// ErrSelectionNotReady indicates Commit was called before exactly two dashboards were selected.
var ErrSelectionNotReady = errors.New(errorMessageCommitNotReady)

// State enumerates the selector's lifecycle.
type State string

const (
	StateInactive       State = "inactive"
	StateSelecting      State = "selecting"
	StateReadyToCompare State = "ready-to-compare"
)

// Selector accumulates up to two dashboard identifiers for a side-by-side
// comparison. It is session-local, never persisted, and resets on navigation
// away from the catalogue view.
type Selector struct {
	state               State
	selectedIdentifiers []string
}

// NewSelector creates a Selector in the inactive state.
func NewSelector() *Selector {
	return &Selector{state: StateInactive, selectedIdentifiers: []string{}}
}

// State returns the selector's current lifecycle state.
func (selector *Selector) State() State {
	return selector.state
}

// SelectedIdentifiers returns the currently selected dashboard identifiers in selection order.
func (selector *Selector) SelectedIdentifiers() []string {
	identifiers := make([]string, len(selector.selectedIdentifiers))
	copy(identifiers, selector.selectedIdentifiers)
	return identifiers
}

// Begin enters comparison mode, discarding any prior selection.
func (selector *Selector) Begin() {
	selector.state = StateSelecting
	selector.selectedIdentifiers = []string{}
}

// Toggle adds the identifier if absent and capacity remains, removes it if
// present, and silently rejects a third distinct identifier. It reports
// whether the selection changed.
func (selector *Selector) Toggle(dashboardID string) bool {
	if selector.state == StateInactive {
		return false
	}
	trimmedDashboardID := strings.TrimSpace(dashboardID)
	if trimmedDashboardID == "" {
		return false
	}

	for selectionIndex, selectedID := range selector.selectedIdentifiers {
		if selectedID == trimmedDashboardID {
			selector.selectedIdentifiers = append(
				selector.selectedIdentifiers[:selectionIndex],
				selector.selectedIdentifiers[selectionIndex+1:]...,
			)
			selector.state = StateSelecting
			return true
		}
	}

	if len(selector.selectedIdentifiers) >= MaximumSelection {
		return false
	}

	selector.selectedIdentifiers = append(selector.selectedIdentifiers, trimmedDashboardID)
	if len(selector.selectedIdentifiers) == MaximumSelection {
		selector.state = StateReadyToCompare
	}
	return true
}

// Commit produces the shareable comparison route. It is valid only when
// exactly two dashboards are selected.
func (selector *Selector) Commit() (string, error) {
	if selector.state != StateReadyToCompare || len(selector.selectedIdentifiers) != MaximumSelection {
		return "", ErrSelectionNotReady
	}

	queryValues := url.Values{}
	queryValues.Set(ComparisonQueryParameter, strings.Join(selector.selectedIdentifiers, identifierSeparator))
	return fmt.Sprintf("%s?%s", ComparisonRoutePath, queryValues.Encode()), nil
}

// Cancel leaves comparison mode from any state, discarding the selection.
func (selector *Selector) Cancel() {
	selector.state = StateInactive
	selector.selectedIdentifiers = []string{}
}

// ComparisonEntry is one column of a comparison view. Found is false when the
// identifier no longer resolves against the catalogue; such entries render an
// explicit empty-state message instead of breaking the page.
type ComparisonEntry struct {
	DashboardID   string
	Configuration catalog.DashboardConfig
	Found         bool
}

// ParseComparisonRoute re-resolves the raw query parameter value against the
// catalogue. Blank identifiers are skipped; unresolvable ones degrade to
// not-found entries.
func ParseComparisonRoute(catalogue *catalog.Catalogue, rawIdentifiers string) []ComparisonEntry {
	comparisonEntries := make([]ComparisonEntry, 0, MaximumSelection)
	for _, rawIdentifier := range strings.Split(rawIdentifiers, identifierSeparator) {
		trimmedIdentifier := strings.TrimSpace(rawIdentifier)
		if trimmedIdentifier == "" {
			continue
		}

		configuration, lookupErr := catalogue.Lookup(trimmedIdentifier)
		comparisonEntries = append(comparisonEntries, ComparisonEntry{
			DashboardID:   trimmedIdentifier,
			Configuration: configuration,
			Found:         lookupErr == nil,
		})
	}
	return comparisonEntries
}
