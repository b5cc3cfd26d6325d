package instance

import "os"

// GetID returns the process identifier used in logs: the platform dyno name
// when present, otherwise INSTANCE_ID, otherwise "local".
func GetID() string {
	for _, key := range []string{"DYNO", "INSTANCE_ID"} {
		if id := os.Getenv(key); id != "" {
			return id
		}
	}
	return "local"
}
