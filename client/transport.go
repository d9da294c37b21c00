package client

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/url"

	"github.com/vitalvas/mosparo/formdata"
	"github.com/vitalvas/mosparo/formsig"
	"golang.org/x/net/http/httpproxy"
)

type signedCallKey struct{}

// signedCall is what a request signature is computed over: the API
// endpoint path, without any prefix from the configured host, and the
// body or query payload.
type signedCall struct {
	endpoint string
	payload  formdata.Value
}

func withSignedCall(ctx context.Context, endpoint string, payload formdata.Value) context.Context {
	return context.WithValue(ctx, signedCallKey{}, signedCall{endpoint: endpoint, payload: payload})
}

func signedCallFromContext(ctx context.Context) (signedCall, bool) {
	call, ok := ctx.Value(signedCallKey{}).(signedCall)

	return call, ok
}

// transport is an http.RoundTripper that authenticates outgoing mosparo
// API calls. The request signature covers the endpoint and payload
// attached with withSignedCall, and is sent as the Basic Auth password with
// the public key as user name.
type transport struct {
	base   http.RoundTripper
	signer *formsig.Signer
}

// newBaseTransport clones http.DefaultTransport, resolves proxies from
// the environment and optionally disables certificate verification.
func newBaseTransport(insecureSkipVerify bool) *http.Transport {
	base := http.DefaultTransport.(*http.Transport).Clone()

	proxyFunc := httpproxy.FromEnvironment().ProxyFunc()
	base.Proxy = func(req *http.Request) (*url.URL, error) {
		return proxyFunc(req.URL)
	}

	if insecureSkipVerify {
		if base.TLSClientConfig == nil {
			base.TLSClientConfig = &tls.Config{}
		}
		base.TLSClientConfig.InsecureSkipVerify = true
	}

	return base
}

func newTransport(base http.RoundTripper, signer *formsig.Signer) *transport {
	if base == nil {
		base = newBaseTransport(false)
	}

	return &transport{
		base:   base,
		signer: signer,
	}
}

// RoundTrip signs a clone of the request and delegates to the base
// transport. Requests without an attached call are signed over their URL
// path and an empty record.
func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	call, ok := signedCallFromContext(req.Context())
	if !ok {
		call = signedCall{endpoint: req.URL.Path, payload: formdata.Record{}}
	}

	clone.SetBasicAuth(t.signer.PublicKey(), t.signer.RequestSignature(call.endpoint, call.payload))
	clone.Header.Set("Accept", "application/json")

	return t.base.RoundTrip(clone)
}
