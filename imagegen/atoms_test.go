package imagegen

import "testing"

func TestIsAzureEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"", false},
		{"https://myresource.openai.azure.com", true},
		{"https://myresource.openai.azure.com/openai/deployments/dalle3", true},
		{"https://myresource.cognitiveservices.azure.com", true},
		{"https://myresource.OpenAI.Azure.COM", true},
		{"https://api.openai.com/v1", false},
		{"https://openai.azure.com.evil.example", false},
		{"http://localhost:1234", false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			if got := IsAzureEndpoint(tt.endpoint); got != tt.want {
				t.Errorf("IsAzureEndpoint(%q) = %v, want %v", tt.endpoint, got, tt.want)
			}
		})
	}
}

func TestIsOpenAIEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"https://api.openai.com/v1", true},
		{"api.openai.com", true},
		{"https://API.OPENAI.COM", true},
		{"https://myresource.openai.azure.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			if got := IsOpenAIEndpoint(tt.endpoint); got != tt.want {
				t.Errorf("IsOpenAIEndpoint(%q) = %v, want %v", tt.endpoint, got, tt.want)
			}
		})
	}
}

func TestIsLocalEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"http://localhost:1234", true},
		{"http://LOCALHOST/v1", true},
		{"http://127.0.0.1:8080", true},
		{"http://[::1]:8080", true},
		{"http://0.0.0.0:7860", true},
		{"http://192.168.1.100:5000", true},
		{"http://10.0.0.1:8000", true},
		{"http://172.16.4.2", true},
		{"localhost:8080", true},
		{"https://api.openai.com/v1", false},
		{"https://v10.example.com", false},
		{"http://8.8.8.8", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			if got := IsLocalEndpoint(tt.endpoint); got != tt.want {
				t.Errorf("IsLocalEndpoint(%q) = %v, want %v", tt.endpoint, got, tt.want)
			}
		})
	}
}

func TestSnapSize(t *testing.T) {
	sizes := []int{256, 512, 1024}

	tests := []struct {
		want int
		got  int
	}{
		{100, 256},
		{256, 256},
		{300, 512},
		{768, 1024},
		{1024, 1024},
		{2048, 1024},
	}

	for _, tt := range tests {
		if got := SnapSize(tt.want, sizes); got != tt.got {
			t.Errorf("SnapSize(%d) = %d, want %d", tt.want, got, tt.got)
		}
	}
}
