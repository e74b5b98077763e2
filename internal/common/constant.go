package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key carrying
// the bearer access token on inbound requests.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the token inside the authorization value.
const BearerPrefix = "Bearer "
