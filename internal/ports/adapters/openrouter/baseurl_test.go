package openrouter

import "testing"

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		name         string
		baseURL      string
		allowedHosts []string
		wantErr      bool
	}{
		{name: "empty falls back to default", baseURL: ""},
		{name: "default host with https", baseURL: "https://openrouter.ai"},
		{name: "default api host with trailing slash", baseURL: "https://api.openrouter.ai/"},
		{name: "reject non-absolute URL", baseURL: "openrouter.ai", wantErr: true},
		{name: "reject http for public host", baseURL: "http://openrouter.ai", wantErr: true},
		{name: "reject unknown host by default", baseURL: "https://evil.example", wantErr: true},
		{name: "reject userinfo", baseURL: "https://user:pw@openrouter.ai", wantErr: true},
		{name: "reject query", baseURL: "https://openrouter.ai?x=1", wantErr: true},
		{name: "reject ftp", baseURL: "ftp://openrouter.ai", wantErr: true},
		{
			name:         "allow configured host",
			baseURL:      "https://proxy.internal",
			allowedHosts: []string{"proxy.internal"},
		},
		{
			name:         "allow http on loopback",
			baseURL:      "http://127.0.0.1:8089",
			allowedHosts: []string{"127.0.0.1:8089"},
		},
		{
			name:         "loopback still needs allow list",
			baseURL:      "http://localhost:8089",
			allowedHosts: []string{"proxy.internal"},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseURL(tt.baseURL, tt.allowedHosts)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNormalizeAllowedHosts(t *testing.T) {
	out := normalizeAllowedHosts([]string{" ", "https://", "http://"})
	if len(out) != len(defaultAllowedHosts) {
		t.Fatalf("expected default allowed hosts, got %v", out)
	}

	out = normalizeAllowedHosts([]string{"HTTPS://Proxy.Internal:8443/", "[::1]:9000"})
	for _, h := range []string{"proxy.internal", "::1"} {
		if _, ok := out[h]; !ok {
			t.Fatalf("expected %q in %v", h, out)
		}
	}
}
