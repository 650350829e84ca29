package footer

import (
	"bytes"
	"html/template"
)

// Link describes a navigation entry displayed in the footer link row.
type Link struct {
	Label string
	URL   string
}

// Config captures the markup and style hooks required to render the footer.
type Config struct {
	ElementID         string
	BaseClass         string
	InnerClass        string
	BrandText         string
	BrandClass        string
	LinkRowClass      string
	LinkClass         string
	SupportMailtoHref string
	SupportLabel      string
	Links             []Link
}

const (
	defaultElementID      = "hub-footer"
	defaultBaseClass      = "border-top mt-5 py-3 bg-body-tertiary"
	defaultInnerClass     = "container d-flex flex-wrap justify-content-between align-items-center"
	defaultBrandText      = "Enspec Power"
	defaultBrandClass     = "text-body-secondary small"
	defaultLinkRowClass   = "nav"
	defaultLinkClass      = "nav-link px-2 text-body-secondary small"
	defaultSupportHref    = "mailto:support@enspecpower.com"
	defaultSupportLabel   = "Support"
	defaultCompanyLinkURL = "https://www.enspecpower.com"
	defaultCompanyLabel   = "enspecpower.com"
)

var footerTemplate = template.Must(template.New("footer").Parse(`<footer id="{{.ElementID}}" class="{{.BaseClass}}">
  <div class="{{.InnerClass}}">
    <span class="{{.BrandClass}}">{{.BrandText}}</span>
    <ul class="{{.LinkRowClass}}">
      {{range .Links}}
      <li><a class="{{$.LinkClass}}" href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.Label}}</a></li>
      {{end}}
      <li><a class="{{.LinkClass}}" href="{{.SupportMailtoHref}}">{{.SupportLabel}}</a></li>
    </ul>
  </div>
</footer>`))

// DefaultConfig returns the footer configuration used across the hub pages.
func DefaultConfig() Config {
	return Config{
		ElementID:         defaultElementID,
		BaseClass:         defaultBaseClass,
		InnerClass:        defaultInnerClass,
		BrandText:         defaultBrandText,
		BrandClass:        defaultBrandClass,
		LinkRowClass:      defaultLinkRowClass,
		LinkClass:         defaultLinkClass,
		SupportMailtoHref: defaultSupportHref,
		SupportLabel:      defaultSupportLabel,
		Links: []Link{
			{Label: defaultCompanyLabel, URL: defaultCompanyLinkURL},
		},
	}
}

// Render returns the footer HTML for the provided configuration.
func Render(config Config) (template.HTML, error) {
	var buffer bytes.Buffer
	if executeErr := footerTemplate.Execute(&buffer, config); executeErr != nil {
		return "", executeErr
	}
	return template.HTML(buffer.String()), nil
}
