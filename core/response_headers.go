package core

import (
	"net/http"
)

// TODO consiten name
var HeadersJson = map[string]string{

	"Content-Type": "application/json; charset=utf-8",

	// Ensure the browser respects the declared content type strictly.
	// mitigate MIME-type sniffing attacks
	// browsers sometimes "sniff" or guess the content type of a resource based on its
	// actual content, rather than strictly adhering to the Content-Type header.
	// Attackers can exploit this by uploading malicious content.
	"X-Content-Type-Options": "nosniff",

	// The response must not be stored in any cache, anywhere, under any circumstances
	// no-store alone is enough to prevent all caching
	// no-cache and must-revalidate is just assurance if something downstream misinterprets no-store.
	"Cache-Control": "no-store, no-cache, must-revalidate",

	// Prevents the response from being embedded in an <iframe>, mitigating clickjacking attacks
	// Adds a layer of defense against obscure misuse
	"X-Frame-Options": "DENY",

	// Controls cross-origin resource sharing (CORS)
	// be restrictive, most restrictive is not to have it, same domain as api endpoints
	// TODO configurable
	//"Access-Control-Allow-Origin": "*",

	// HSTS TODO configurable  based on server are we under TLS terminating proxy
	//"Strict-Transport-Security": "max-age=31536000",

	// the main XSS-prevention benefits of CSP don't apply to JSON responses
	// because they aren't treated as active documents by the browser. However,
	// using Content-Security-Policy: default-src 'none'; frame-ancestors
	// 'none'; is not entirely meaningless. It provides valuable
	// anti-clickjacking protection (frame-ancestors) and reinforces the
	// non-document nature of the response (default-src). It's a low-cost
	// security hardening step.
	//
	// frame-ancestors 'none': This directive is still relevant. It prevents
	// any domain (including your own) from embedding the API endpoint URL in
	// an <iframe>, <frame>, <object>, or <embed>. This provides protection
	// against Clickjacking attacks where an attacker might try to trick a user
	// into interacting with your API endpoint indirectly via a framed page.
	// While less common for APIs than for interactive web pages, it's a valid
	// defense-in-depth measure. This is the modern replacement for
	// X-Frame-Options: DENY.
	//
	// default-src 'none': Setting this essentially acts as a strong assertion:
	// "This response should never be interpreted as an active document capable
	// of loading resources." While the Content-Type header already signals
	// this, adding CSP: default-src 'none' provides an extra layer should
	// there ever be a browser bug or unusual scenario where the content type
	// is misinterpreted. It hardens the endpoint.
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

// HeadersFavicon defines cache headers for favicon.ico.
// Favicons are often requested frequently and don't change often.
var HeadersFavicon = map[string]string{
	// - public: Allows caching by intermediate proxies and browsers.
	// - max-age=86400: Cache for 24 hours. Favicons can be cached longer
	//                  than HTML but shorter than immutable assets.
	"Cache-Control": "public, max-age=86400",
}

// SetHeaders applies one or more sets of headers to the response writer.
// Headers from later maps will overwrite headers from earlier maps if keys conflict.
func SetHeaders(w http.ResponseWriter, headers ...map[string]string) {
	for _, headerMap := range headers {
		for key, value := range headerMap {
			// Using Set() is slightly cleaner than direct map access and handles potential nil map internally.
			w.Header().Set(key, value)
		}
	}
}
