package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustMinBytes(value []byte, envName string, min int) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
	if len(value) < min {
		log.Fatalf("env %s must be at least %d bytes", envName, min)
	}
}

func MustOneOf(value, envName string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	log.Fatalf("env %s=%q is not one of %v", envName, value, allowed)
}
