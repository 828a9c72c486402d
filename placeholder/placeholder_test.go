package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []string
	}{
		{"two names", "gam update user <email> firstname <first>", []string{"email", "first"}},
		{"none", "Get-Process", nil},
		{"repeated name", "Add-ADGroupMember -Identity <group> -Members <user>; Get-ADGroup <group>", []string{"group", "user", "group"}},
		{"name with spaces", "gam info user <Email Address>", []string{"Email Address"}},
		{"empty brackets ignored", "echo <> <x>", []string{"x"}},
		{"unterminated", "echo <x", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.template))
		})
	}
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"group", "user"}, Unique([]string{"group", "user", "group"}))
	assert.Nil(t, Unique(nil))
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		template string
		values   map[string]string
		want     string
	}{
		{
			name:     "all supplied",
			template: "gam update user <email> firstname <first>",
			values:   map[string]string{"email": "a@b.com", "first": "Jo"},
			want:     "gam update user a@b.com firstname Jo",
		},
		{
			name:     "missing value becomes empty",
			template: "gam user <user> add group <group>",
			values:   map[string]string{"user": "jo"},
			want:     "gam user jo add group ",
		},
		{
			name:     "nil values",
			template: "Stop-Process -Id <process_id>",
			want:     "Stop-Process -Id ",
		},
		{
			name:     "no placeholders unchanged",
			template: "Get-ADDomain",
			values:   map[string]string{"x": "y"},
			want:     "Get-ADDomain",
		},
		{
			name:     "repeated name gets same value",
			template: "<g> and <g>",
			values:   map[string]string{"g": "ops"},
			want:     "ops and ops",
		},
		{
			name:     "value not re-expanded",
			template: "echo <a> <b>",
			values:   map[string]string{"a": "<b>", "b": "B"},
			want:     "echo <b> B",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.template, tt.values))
		})
	}
}

func TestBuildNeverLeavesPlaceholders(t *testing.T) {
	templates := []string{
		"gam info user <Email Address>",
		"Set-ADUser -Identity <user> -Password <securepassword>",
		"<a><b><c>",
	}
	for _, tmpl := range templates {
		out := Build(tmpl, nil)
		assert.False(t, Has(out), "built %q from %q", out, tmpl)
	}
}
