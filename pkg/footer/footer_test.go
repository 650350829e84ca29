package footer

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testFooterElementID    = "footer-element"
	testFooterBaseClass    = "footer-base"
	testFooterInnerClass   = "footer-inner"
	testFooterBrandText    = "Enspec Power"
	testFooterBrandClass   = "footer-brand"
	testFooterLinkRowClass = "footer-links"
	testFooterLinkClass    = "footer-link"
	testFooterSupportHref  = "mailto:support@enspecpower.com"
	testFooterSupportLabel = "Support"
	testFooterLinkLabel    = "Docs"
	testFooterLinkURL      = "https://docs.enspecpower.com"

	testFooterTemplateName   = "footer"
	testFooterTemplateOption = "missingkey=error"
	testFooterTemplateError  = "{{.MissingValue}}"
)

func baseFooterConfig() Config {
	return Config{
		ElementID:         testFooterElementID,
		BaseClass:         testFooterBaseClass,
		InnerClass:        testFooterInnerClass,
		BrandText:         testFooterBrandText,
		BrandClass:        testFooterBrandClass,
		LinkRowClass:      testFooterLinkRowClass,
		LinkClass:         testFooterLinkClass,
		SupportMailtoHref: testFooterSupportHref,
		SupportLabel:      testFooterSupportLabel,
		Links: []Link{
			{Label: testFooterLinkLabel, URL: testFooterLinkURL},
		},
	}
}

func TestRenderFooterIncludesBrandAndLinks(testingT *testing.T) {
	rendered, renderErr := Render(baseFooterConfig())
	require.NoError(testingT, renderErr)

	renderedText := string(rendered)
	require.Contains(testingT, renderedText, testFooterBrandText)
	require.Contains(testingT, renderedText, testFooterLinkLabel)
	require.Contains(testingT, renderedText, testFooterLinkURL)
	require.Contains(testingT, renderedText, testFooterSupportHref)
	require.Contains(testingT, renderedText, `id="`+testFooterElementID+`"`)
}

func TestDefaultConfigRendersSupportContact(testingT *testing.T) {
	rendered, renderErr := Render(DefaultConfig())
	require.NoError(testingT, renderErr)

	renderedText := string(rendered)
	require.Contains(testingT, renderedText, defaultBrandText)
	require.Contains(testingT, renderedText, defaultSupportHref)
	require.Contains(testingT, renderedText, defaultCompanyLinkURL)
}

func TestRenderFooterReportsTemplateError(testingT *testing.T) {
	originalTemplate := footerTemplate
	testingT.Cleanup(func() {
		footerTemplate = originalTemplate
	})
	footerTemplate = template.Must(template.New(testFooterTemplateName).Option(testFooterTemplateOption).Parse(testFooterTemplateError))

	_, renderErr := Render(baseFooterConfig())
	require.Error(testingT, renderErr)
}
