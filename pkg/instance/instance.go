package instance

import "os"

const envInstanceID = "FLOORLINE_INSTANCE_ID"

// GetID identifies this process in logs and lock ownership. It prefers
// FLOORLINE_INSTANCE_ID, then the container hostname, then fallback.
func GetID(fallback string) string {
	if id := os.Getenv(envInstanceID); id != "" {
		return id
	}
	if host := os.Getenv("HOSTNAME"); host != "" {
		return host
	}
	return fallback
}
