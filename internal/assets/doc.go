// Package assets provides the built-in configuration and the dashboard
// HTML template.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from the go:embed filesystem
//	    ├── FilesystemLoader  - loads from a custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// # Directory Structure
//
//	{basePath}/
//	└── templates/
//	    └── {name}.html      # dashboard templates (html/template syntax)
//
// The default configuration (profiles, ignore list, rasterizer and wait
// settings) is embedded from defaults/config.yaml and exposed by
// DefaultConfig.
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
