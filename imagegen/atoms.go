package imagegen

import (
	"net"
	"net/url"
	"strings"
)

// IsAzureEndpoint reports whether endpoint is an Azure OpenAI resource
// (*.openai.azure.com or *.cognitiveservices.azure.com).
func IsAzureEndpoint(endpoint string) bool {
	host := endpointHost(endpoint)
	return strings.HasSuffix(host, ".openai.azure.com") ||
		strings.HasSuffix(host, ".cognitiveservices.azure.com")
}

// IsOpenAIEndpoint reports whether endpoint is the hosted OpenAI API.
func IsOpenAIEndpoint(endpoint string) bool {
	return endpointHost(endpoint) == "api.openai.com"
}

// IsLocalEndpoint reports whether endpoint points at this machine or a
// private network, where OpenAI-compatible image servers usually run
// without an API key.
//
// Example:
//
//	IsLocalEndpoint("http://localhost:8080/v1")     // true
//	IsLocalEndpoint("http://192.168.1.20:5000/v1")  // true
//	IsLocalEndpoint("https://api.openai.com/v1")    // false
func IsLocalEndpoint(endpoint string) bool {
	host := endpointHost(endpoint)
	if host == "" {
		return false
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified()
}

// endpointHost returns the lowercase host of endpoint without port. A
// missing scheme is tolerated.
func endpointHost(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ""
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// SnapSize returns the supported square size closest to want: the smallest
// one that is at least want, or the largest when want exceeds them all.
// supported must be sorted ascending and non-empty.
func SnapSize(want int, supported []int) int {
	for _, s := range supported {
		if s >= want {
			return s
		}
	}
	return supported[len(supported)-1]
}
