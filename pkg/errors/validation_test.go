package errors

import (
	"testing"
)

func TestValidateColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty allowed", "", false},
		{"short hex", "#fff", false},
		{"long hex", "#1a2b3c", false},
		{"uppercase hex", "#AABBCC", false},

		{"missing hash", "fff", true},
		{"named color", "red", true},
		{"four digits", "#ffff", true},
		{"eight digits", "#aabbccdd", true},
		{"non-hex chars", "#gghhii", true},
		{"rgb function", "rgb(255,0,0)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Engineering", false},
		{"with spaces", "Team Alpha 2024", false},
		{"unicode", "Café Crew", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 200)), true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePhotoRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty allowed", "", false},
		{"data uri", "data:image/png;base64,iVBORw0KGgo=", false},
		{"https", "https://example.com/avatar.png", false},
		{"http", "http://example.com/avatar.png", false},

		{"ftp", "ftp://example.com/avatar.png", true},
		{"file", "file:///etc/passwd", true},
		{"plain path", "/tmp/avatar.png", true},
		{"javascript", "javascript:alert(1)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhotoRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePhotoRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateChartPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "charts/team.json", false},
		{"absolute", "/home/user/team.json", false},
		{"with dots", "../team.json", false},

		{"empty", "", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChartPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateChartPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
