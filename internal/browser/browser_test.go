package browser

import (
	"reflect"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://reddit.com/r/SaaS/comments/abc", false},
		{"http://example.com", false},
		{"file:///etc/passwd", true},
		{"javascript:alert(1)", true},
		{"ftp://example.com", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		err := Validate(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestOpenRejectsNonHTTP(t *testing.T) {
	if err := Open("file:///etc/passwd"); err == nil {
		t.Error("Open(file URL): expected error, got nil")
	}
}

func TestCommand(t *testing.T) {
	const u = "https://reddit.com/r/SaaS"
	tests := []struct {
		goos, env string
		name      string
		args      []string
	}{
		{"darwin", "", "open", []string{u}},
		{"linux", "", "xdg-open", []string{u}},
		{"freebsd", "", "xdg-open", []string{u}},
		{"windows", "", "rundll32", []string{"url.dll,FileProtocolHandler", u}},
		{"linux", "firefox", "firefox", []string{u}},
	}
	for _, tt := range tests {
		name, args := Command(tt.goos, tt.env, u)
		if name != tt.name || !reflect.DeepEqual(args, tt.args) {
			t.Errorf("Command(%q, %q) = %s %v, want %s %v", tt.goos, tt.env, name, args, tt.name, tt.args)
		}
	}
}
