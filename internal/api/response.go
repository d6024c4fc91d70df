package api

import (
	"encoding/json"
	"net/http"
	"net/url"

	"shopkit/pkg/shopify"
)

// Envelope is the JSON body of every admin, proxy and rejection response.
type Envelope struct {
	Status   int    `json:"status"`
	Message  string `json:"message"`
	Data     any    `json:"data,omitempty"`
	JWTToken string `json:"jwtToken,omitempty"`
}

// WriteJSON writes env with an HTTP status mirroring env.Status; 0 means 200.
func WriteJSON(w http.ResponseWriter, env Envelope) {
	code := env.Status
	if code < 100 || code > 599 {
		code = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(env)
}

// WriteStatus writes a bare status/message envelope.
func WriteStatus(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, Envelope{Status: status, Message: message})
}

// ProxyResponse writes {status, message, data}; data defaults to an empty list.
func ProxyResponse(w http.ResponseWriter, status int, message string, data any) {
	if data == nil {
		data = []any{}
	}
	WriteJSON(w, Envelope{Status: status, Message: message, Data: data})
}

// Responder writes admin responses, attaching a fresh session token when the
// caller's token is about to expire.
type Responder struct {
	Tokens shopify.SessionTokens
}

func (rs Responder) Admin(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	if data == nil {
		data = []any{}
	}
	env := Envelope{Status: status, Message: message, Data: data}

	rc := FromContext(r.Context())
	if rs.Tokens.NeedsRefresh(rc.ExpireTime) {
		if tok, err := rs.Tokens.Mint(rc.StoreID, rc.StoreKey); err == nil {
			env.JWTToken = tok
		}
	}
	WriteJSON(w, env)
}

// InstallURL is the link a merchant follows to (re)install the app on shop.
func InstallURL(publicBaseURL string, r *http.Request, shop string) string {
	base := publicBaseURL
	if base == "" {
		base = "https://" + r.Host
	}
	return base + "/install?shop=" + url.QueryEscape(shop)
}
