package assets

// DefaultTemplateName is the built-in dashboard template.
const DefaultTemplateName = "dashboard"

// AssetLoader loads HTML templates by name.
type AssetLoader interface {
	// LoadTemplate loads an HTML template by name (without .html extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) (string, error)
}
