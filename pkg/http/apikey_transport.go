package http

import "net/http"

const defaultAPIKeyHeader = "x-goog-api-key"

type apiKeyTransport struct {
	header    string
	key       string
	transport http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.key != "" {
		reqCopy.Header.Set(t.header, t.key)
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAPIKey sets the provider API key header on every outbound request.
// An empty header name falls back to x-goog-api-key.
func WithAPIKey(header, key string) HttpOpts {
	if header == "" {
		header = defaultAPIKeyHeader
	}
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &apiKeyTransport{
			header:    header,
			key:       key,
			transport: rt,
		}
	})
}
