package assets

import (
	"fmt"
	"strings"
)

// MaxAssetNameLength bounds template names read from the config.
const MaxAssetNameLength = 64

// ValidateAssetName checks that a template name can be joined to a template
// directory. Names carry no extension and no path elements.
func ValidateAssetName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	case len(name) > MaxAssetNameLength:
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidAssetName, MaxAssetNameLength)
	case strings.ContainsAny(name, "/\\."):
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
