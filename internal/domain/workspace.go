package domain

// WorkspaceSpec describes where a kcatflux workspace is created.
type WorkspaceSpec struct {
	Root string
	// ContactEmail and APIKey are written into the generated kcatflux.yaml when set.
	ContactEmail string
	APIKey       string
}

// TemplateVars are the placeholders available to workspace templates.
func (s WorkspaceSpec) TemplateVars() map[string]string {
	return map[string]string{
		"contact_email": s.ContactEmail,
		"api_key":       s.APIKey,
	}
}
