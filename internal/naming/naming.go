// Package naming derives on-disk folder names and database names from
// user-supplied project names.
package naming

import (
	"regexp"
	"strings"

	"github.com/good-yellow-bee/kitforge/internal/models"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

var (
	projectNamePattern   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	workspaceNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
)

// ReservedSuffixes may not terminate a workspace name since they would
// collide with the folders of its components.
var ReservedSuffixes = []string{"-api", "-admin-ui", "-ui", "-status", "-infra", "-mobile", "-metrics"}

// Environments are the database environments, in provisioning order.
var Environments = []string{"dev", "test", "prod"}

// FolderName applies the kind suffix to name unless name already ends with it.
// Matching is exact-string: "shop-api" with kind store becomes "shop-api-store".
func FolderName(name string, kind models.ComponentKind) string {
	suffix := kind.Suffix()
	if suffix == "" || strings.HasSuffix(name, suffix) {
		return name
	}
	return name + suffix
}

// DatabaseName returns the database identifier for folderName in env.
func DatabaseName(folderName, env string) string {
	return strings.ReplaceAll(folderName, "-", "_") + "_" + env
}

// Databases returns the dev/test/prod database names for folderName.
func Databases(folderName string) *models.Databases {
	return &models.Databases{
		Dev:  DatabaseName(folderName, "dev"),
		Test: DatabaseName(folderName, "test"),
		Prod: DatabaseName(folderName, "prod"),
	}
}

// Identity is the resolved identity of a project.
type Identity struct {
	Name       string
	Kind       models.ComponentKind
	FolderName string
	Databases  *models.Databases
}

// Resolve validates name and derives the folder and database names for kind.
// Databases is nil for kinds that do not own data.
func Resolve(name string, kind models.ComponentKind) (Identity, error) {
	if err := ValidateName(name); err != nil {
		return Identity{}, err
	}
	id := Identity{
		Name:       name,
		Kind:       kind,
		FolderName: FolderName(name, kind),
	}
	if kind.OwnsData() {
		id.Databases = Databases(id.FolderName)
	}
	return id, nil
}

// ValidateName checks a logical project name.
func ValidateName(name string) error {
	if !projectNamePattern.MatchString(name) {
		return apperrors.New(apperrors.CodeInvalidName, "invalid project name %q", name).
			WithHint("names must start with a letter and contain only letters, digits, '-' and '_'")
	}
	return nil
}

// ValidateWorkspaceName checks a workspace name.
func ValidateWorkspaceName(name string) error {
	if !workspaceNamePattern.MatchString(name) || strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return apperrors.New(apperrors.CodeInvalidName, "invalid workspace name %q", name).
			WithHint("start with a lowercase letter, then use lowercase letters, digits and inner hyphens, e.g. %q", Suggest(name))
	}
	for _, suffix := range ReservedSuffixes {
		if strings.HasSuffix(name, suffix) {
			trimmed := strings.TrimSuffix(name, suffix)
			return apperrors.New(apperrors.CodeReservedName, "workspace name %q ends with reserved suffix %q", name, suffix).
				WithHint("try %q", trimmed)
		}
	}
	return nil
}

// Suggest turns an arbitrary string into a plausible workspace name.
func Suggest(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "my-workspace"
	}
	if s[0] < 'a' || s[0] > 'z' {
		return "ws-" + s
	}
	return s
}
