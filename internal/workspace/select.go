package workspace

import (
	"github.com/good-yellow-bee/kitforge/internal/models"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

// SelectComponents resolves --with-* and --skip-* flags. The two forms are
// mutually exclusive; with neither, every project kind is selected.
func SelectComponents(with, skip []models.ComponentKind) (models.Components, error) {
	var c models.Components
	if len(with) > 0 && len(skip) > 0 {
		return c, apperrors.New(apperrors.CodeInvalidArgument, "--with-* and --skip-* flags cannot be combined").
			WithHint("either list the components to include or the ones to leave out")
	}
	switch {
	case len(with) > 0:
		for _, k := range with {
			c.Set(k, true)
		}
	default:
		for _, k := range models.ProjectKinds {
			c.Set(k, true)
		}
		for _, k := range skip {
			c.Set(k, false)
		}
	}
	if len(c.Kinds()) == 0 {
		return c, apperrors.New(apperrors.CodeInvalidArgument, "no components selected")
	}
	return c, nil
}
