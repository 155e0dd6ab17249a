package naming

import (
	"testing"

	"github.com/good-yellow-bee/kitforge/internal/models"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

func TestFolderName(t *testing.T) {
	tests := []struct {
		name string
		kind models.ComponentKind
		want string
	}{
		{"my-cool-app", models.KindAPI, "my-cool-app-api"},
		{"foo-bar-api", models.KindAPI, "foo-bar-api"},
		{"shop", models.KindAdminUI, "shop-admin-ui"},
		{"shop-admin-ui", models.KindAdminUI, "shop-admin-ui"},
		{"shop-api", models.KindStore, "shop-api-store"},
		{"shop-ui", models.KindAdminUI, "shop-ui-admin-ui"},
		{"acme", models.KindWorkspace, "acme"},
		{"acme-api", models.KindWorkspace, "acme-api"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+string(tt.kind), func(t *testing.T) {
			if got := FolderName(tt.name, tt.kind); got != tt.want {
				t.Errorf("FolderName(%q, %s) = %q, want %q", tt.name, tt.kind, got, tt.want)
			}
		})
	}
}

func TestFolderName_Idempotent(t *testing.T) {
	names := []string{"a", "shop", "foo-bar-api", "x_y", "status", "Mixed-Case"}
	for _, n := range names {
		for _, k := range append(models.ProjectKinds, models.KindWorkspace) {
			once := FolderName(n, k)
			if twice := FolderName(once, k); twice != once {
				t.Errorf("FolderName not idempotent for %q/%s: %q -> %q", n, k, once, twice)
			}
		}
	}
}

func TestDatabases(t *testing.T) {
	id, err := Resolve("my-cool-app", models.KindAPI)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id.FolderName != "my-cool-app-api" {
		t.Fatalf("folder = %q", id.FolderName)
	}
	want := models.Databases{Dev: "my_cool_app_api_dev", Test: "my_cool_app_api_test", Prod: "my_cool_app_api_prod"}
	if *id.Databases != want {
		t.Errorf("databases = %+v, want %+v", *id.Databases, want)
	}

	ui, err := Resolve("my-cool-app", models.KindAdminUI)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ui.Databases != nil {
		t.Error("admin-ui should not own databases")
	}
}

func TestValidateName(t *testing.T) {
	valid := []string{"a", "shop", "Shop_2", "my-app-api"}
	for _, n := range valid {
		if err := ValidateName(n); err != nil {
			t.Errorf("ValidateName(%q) = %v", n, err)
		}
	}
	invalid := []string{"", "1shop", "-shop", "shop app", "shop.api", "_x"}
	for _, n := range invalid {
		err := ValidateName(n)
		if !apperrors.IsCode(err, apperrors.CodeInvalidName) {
			t.Errorf("ValidateName(%q) = %v, want invalid_name", n, err)
		}
	}
}

func TestValidateWorkspaceName(t *testing.T) {
	tests := []struct {
		name string
		code apperrors.Code
	}{
		{"acme", ""},
		{"acme-2", ""},
		{"Acme", apperrors.CodeInvalidName},
		{"-acme", apperrors.CodeInvalidName},
		{"acme-", apperrors.CodeInvalidName},
		{"acme_co", apperrors.CodeInvalidName},
		{"1acme", apperrors.CodeInvalidName},
		{"42", apperrors.CodeInvalidName},
		{"acme-api", apperrors.CodeReservedName},
		{"acme-admin-ui", apperrors.CodeReservedName},
		{"acme-ui", apperrors.CodeReservedName},
		{"acme-metrics", apperrors.CodeReservedName},
	}
	for _, tt := range tests {
		err := ValidateWorkspaceName(tt.name)
		if tt.code == "" {
			if err != nil {
				t.Errorf("ValidateWorkspaceName(%q) = %v", tt.name, err)
			}
			continue
		}
		if !apperrors.IsCode(err, tt.code) {
			t.Errorf("ValidateWorkspaceName(%q) = %v, want %s", tt.name, err, tt.code)
		}
	}
}

func TestSuggest(t *testing.T) {
	if got := Suggest("My Cool_App!"); got != "my-cool-app" {
		t.Errorf("Suggest = %q", got)
	}
	if got := Suggest("---"); got != "my-workspace" {
		t.Errorf("Suggest = %q", got)
	}
	if got := Suggest("1acme"); got != "ws-1acme" {
		t.Errorf("Suggest = %q", got)
	}
}
