package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// PresentationKindEmbeddedReport renders a third-party iframe at a fixed URL.
	PresentationKindEmbeddedReport = "embedded-report"
	// PresentationKindGeneratedAnalytics prefers a locally hosted document over a live embed.
	PresentationKindGeneratedAnalytics = "generated-analytics"
	// PresentationKindMultiReport renders an ordered list of child reports behind tabs.
	PresentationKindMultiReport = "multi-report"
	// PresentationKindAssistant resolves to the interactive content assistant page.
	PresentationKindAssistant = "ai-assistant"

	// ChildReportKindEmbeddedReport marks a child rendered as an iframe.
	ChildReportKindEmbeddedReport = "embedded-report"
	// ChildReportKindDocument marks a child rendered as a static document.
	ChildReportKindDocument = "document"

	errorMessageNotFound             = "catalog: dashboard not found"
	errorMessageInvalidConfiguration = "catalog: invalid dashboard configuration"
	errorMessageDuplicateIdentifier  = "catalog: duplicate dashboard identifier"
	errorMessageReadCatalogueFile    = "catalog: read catalogue file"
	errorMessageParseCatalogueFile   = "catalog: parse catalogue file"
	errorMessageEmptyCatalogue       = "catalog: catalogue has no dashboards"
)

var (
	// ErrDashboardNotFound indicates the requested identifier is absent from the catalogue.
	ErrDashboardNotFound = errors.New(errorMessageNotFound)
	// ErrInvalidConfiguration indicates a catalogue entry is missing required fields for its declared kind.
	ErrInvalidConfiguration = errors.New(errorMessageInvalidConfiguration)
	// ErrDuplicateIdentifier indicates two catalogue entries share an identifier.
	ErrDuplicateIdentifier = errors.New(errorMessageDuplicateIdentifier)
	// ErrEmptyCatalogue indicates the catalogue source contained no entries.
	ErrEmptyCatalogue = errors.New(errorMessageEmptyCatalogue)
)

// IconName identifies a renderer in the icon set. Unknown names are a load-time error.
type IconName string

const (
	IconLinkedIn     IconName = "linkedin"
	IconBarChart     IconName = "bar-chart"
	IconFileBarChart IconName = "file-bar-chart"
	IconPieChart     IconName = "pie-chart"
	IconBuilding     IconName = "building"
	IconBrain        IconName = "brain"
)

var knownIconNames = map[IconName]struct{}{
	IconLinkedIn:     {},
	IconBarChart:     {},
	IconFileBarChart: {},
	IconPieChart:     {},
	IconBuilding:     {},
	IconBrain:        {},
}

// ChildReport describes one entry of a multi-report dashboard.
type ChildReport struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title"`
	Kind         string `yaml:"kind"`
	EmbedURL     string `yaml:"embed_url"`
	DocumentPath string `yaml:"document_path"`
	Description  string `yaml:"description"`
}

// DashboardConfig is one catalogue entry. PresentationKind selects which of the
// kind-specific fields are required; ValidateConfiguration enforces that once at load.
type DashboardConfig struct {
	ID                   string        `yaml:"id"`
	Title                string        `yaml:"title"`
	Description          string        `yaml:"description"`
	Icon                 IconName      `yaml:"icon"`
	PresentationKind     string        `yaml:"presentation_kind"`
	EmbedURL             string        `yaml:"embed_url"`
	FallbackDocumentPath string        `yaml:"fallback_document_path"`
	PreferFallback       *bool         `yaml:"prefer_fallback"`
	ChildReports         []ChildReport `yaml:"child_reports"`
}

// PrefersFallback reports whether a generated-analytics dashboard should render its
// static document instead of the live embed. Unset defaults to true because the live
// embed surfaces unclosable third-party login dialogs.
func (configuration DashboardConfig) PrefersFallback() bool {
	if configuration.PreferFallback == nil {
		return true
	}
	return *configuration.PreferFallback
}

// Catalogue is the immutable, insertion-ordered dashboard registry.
type Catalogue struct {
	entriesByID    map[string]DashboardConfig
	orderedEntries []DashboardConfig
}

// NewCatalogue validates the provided entries and builds an immutable catalogue.
func NewCatalogue(entries []DashboardConfig) (*Catalogue, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalogue
	}

	entriesByID := make(map[string]DashboardConfig, len(entries))
	orderedEntries := make([]DashboardConfig, 0, len(entries))
	for _, entry := range entries {
		if validationErr := ValidateConfiguration(entry); validationErr != nil {
			return nil, validationErr
		}
		if _, alreadyPresent := entriesByID[entry.ID]; alreadyPresent {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateIdentifier, entry.ID)
		}
		entriesByID[entry.ID] = entry
		orderedEntries = append(orderedEntries, entry)
	}

	return &Catalogue{entriesByID: entriesByID, orderedEntries: orderedEntries}, nil
}

// LoadCatalogueFile reads a YAML catalogue definition and builds a catalogue from it.
func LoadCatalogueFile(cataloguePath string) (*Catalogue, error) {
	fileContents, readErr := os.ReadFile(cataloguePath)
	if readErr != nil {
		return nil, fmt.Errorf("%s: %w", errorMessageReadCatalogueFile, readErr)
	}

	var catalogueDocument struct {
		Dashboards []DashboardConfig `yaml:"dashboards"`
	}
	if unmarshalErr := yaml.Unmarshal(fileContents, &catalogueDocument); unmarshalErr != nil {
		return nil, fmt.Errorf("%s: %w", errorMessageParseCatalogueFile, unmarshalErr)
	}

	return NewCatalogue(catalogueDocument.Dashboards)
}

// Lookup returns the configuration for an identifier or ErrDashboardNotFound.
func (catalogue *Catalogue) Lookup(dashboardID string) (DashboardConfig, error) {
	entry, entryPresent := catalogue.entriesByID[strings.TrimSpace(dashboardID)]
	if !entryPresent {
		return DashboardConfig{}, fmt.Errorf("%w: %s", ErrDashboardNotFound, dashboardID)
	}
	return entry, nil
}

// All returns the catalogue entries in insertion order.
func (catalogue *Catalogue) All() []DashboardConfig {
	entries := make([]DashboardConfig, len(catalogue.orderedEntries))
	copy(entries, catalogue.orderedEntries)
	return entries
}

// ValidateConfiguration checks that an entry carries the fields its declared kind requires.
func ValidateConfiguration(configuration DashboardConfig) error {
	if strings.TrimSpace(configuration.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidConfiguration)
	}
	if strings.TrimSpace(configuration.Title) == "" {
		return fmt.Errorf("%w: %s: missing title", ErrInvalidConfiguration, configuration.ID)
	}
	if _, iconKnown := knownIconNames[configuration.Icon]; !iconKnown {
		return fmt.Errorf("%w: %s: unknown icon %q", ErrInvalidConfiguration, configuration.ID, configuration.Icon)
	}

	switch configuration.PresentationKind {
	case PresentationKindEmbeddedReport:
		if strings.TrimSpace(configuration.EmbedURL) == "" {
			return fmt.Errorf("%w: %s: embedded-report requires embed_url", ErrInvalidConfiguration, configuration.ID)
		}
	case PresentationKindGeneratedAnalytics:
		if strings.TrimSpace(configuration.FallbackDocumentPath) == "" {
			return fmt.Errorf("%w: %s: generated-analytics requires fallback_document_path", ErrInvalidConfiguration, configuration.ID)
		}
	case PresentationKindMultiReport:
		if len(configuration.ChildReports) == 0 {
			return fmt.Errorf("%w: %s: multi-report requires child_reports", ErrInvalidConfiguration, configuration.ID)
		}
		for _, childReport := range configuration.ChildReports {
			if validationErr := validateChildReport(configuration.ID, childReport); validationErr != nil {
				return validationErr
			}
		}
	case PresentationKindAssistant:
	default:
		return fmt.Errorf("%w: %s: unknown presentation kind %q", ErrInvalidConfiguration, configuration.ID, configuration.PresentationKind)
	}

	return nil
}

func validateChildReport(parentID string, childReport ChildReport) error {
	if strings.TrimSpace(childReport.ID) == "" {
		return fmt.Errorf("%w: %s: child report missing id", ErrInvalidConfiguration, parentID)
	}
	switch childReport.Kind {
	case ChildReportKindEmbeddedReport:
		if strings.TrimSpace(childReport.EmbedURL) == "" {
			return fmt.Errorf("%w: %s/%s: embedded-report child requires embed_url", ErrInvalidConfiguration, parentID, childReport.ID)
		}
	case ChildReportKindDocument:
		if strings.TrimSpace(childReport.DocumentPath) == "" {
			return fmt.Errorf("%w: %s/%s: document child requires document_path", ErrInvalidConfiguration, parentID, childReport.ID)
		}
	default:
		return fmt.Errorf("%w: %s/%s: unknown child report kind %q", ErrInvalidConfiguration, parentID, childReport.ID, childReport.Kind)
	}
	return nil
}
