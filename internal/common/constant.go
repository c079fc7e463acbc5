package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// MinPasswordLength is the shortest password accepted on sign-up.
const MinPasswordLength = 6
