package httpapi

import _ "embed"

//go:embed templates/home.tmpl
var homeTemplateHTML string

//go:embed templates/dashboard.tmpl
var dashboardTemplateHTML string

//go:embed templates/compare.tmpl
var compareTemplateHTML string

//go:embed templates/assistant.tmpl
var assistantTemplateHTML string

//go:embed templates/profile.tmpl
var profileTemplateHTML string

//go:embed templates/error.tmpl
var errorTemplateHTML string
