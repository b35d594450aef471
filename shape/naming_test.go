package shape

import "testing"

func TestIdentity_LeavesNameUnchanged(t *testing.T) {
	if got := Identity("UserName"); got != "UserName" {
		t.Errorf("Identity() = %q, want %q", got, "UserName")
	}
}

func TestCamelCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ID", "id"},
		{"UserName", "userName"},
		{"URLPath", "urlPath"},
		{"name", "name"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CamelCase(tt.in); got != tt.want {
				t.Errorf("CamelCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"UserName", "user_name"},
		{"ID", "id"},
		{"HTTPStatus", "http_status"},
		{"name", "name"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SnakeCase(tt.in); got != tt.want {
				t.Errorf("SnakeCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
