package utils

import "os"

// GetJWTSecret returns the HMAC secret used to verify bearer tokens.
func GetJWTSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}
