package common

// AuthorizationHeaderName is the HTTP header that carries the access token.
const AuthorizationHeaderName = "Authorization"

// AcceptedAuthSchemes lists the Authorization schemes accepted by the server,
// lower-cased. Matching is case-insensitive.
var AcceptedAuthSchemes = []string{"bearer", "token"}
