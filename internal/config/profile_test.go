package config

import "testing"

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "main", false},
		{"valid with numbers", "band123", false},
		{"valid with hyphen", "my-band", false},
		{"valid with underscore", "my_band", false},
		{"valid single char", "a", false},
		{"valid max length", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"empty", "", true},
		{"uppercase", "Main", true},
		{"space", "my band", true},
		{"dot", "my.band", true},
		{"too long", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", true},
		{"special chars", "my@band", true},
		{"slash", "my/band", true},
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

func TestResolveProfile(t *testing.T) {
	tests := []struct {
		name string
		flag string
		cfg  *Config
		want string
	}{
		{"flag wins", "work", &Config{DefaultProfile: "home"}, "work"},
		{"config default", "", &Config{DefaultProfile: "home"}, "home"},
		{"empty config", "", &Config{}, "main"},
		{"no config", "", nil, "main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveProfile(tt.flag, tt.cfg); got != tt.want {
				t.Errorf("ResolveProfile(%q) = %q, want %q", tt.flag, got, tt.want)
			}
		})
	}
}
