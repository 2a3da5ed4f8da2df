// Package environment provides utilities for managing environment variables
// and configuration loading with support for namespacing and defaults.
package environment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from a .env file in the working
// directory. A missing file is not an error: production deployments set the
// variables directly.
//
// Example:
//
//	if err := environment.LoadEnv(); err != nil {
//	    log.Printf("reading .env: %v", err)
//	}
func LoadEnv() error {
	return LoadPath("")
}

// LoadPath loads environment variables from the file at p, or from .env when
// p is empty. Variables that are already set are never overwritten.
func LoadPath(p string) error {
	var err error
	if p != "" {
		err = godotenv.Load(p)
	} else {
		err = godotenv.Load()
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// GetEnvOrDefault retrieves an environment variable value, returning a fallback
// value if the variable is not set.
//
// Example:
//
//	port := GetEnvOrDefault("PORT", "8080")
func GetEnvOrDefault(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetNamespaceEnvKey constructs a namespaced environment variable key by
// combining a namespace prefix with the actual key name using an underscore.
// If no namespace is provided, it returns the key unchanged.
//
// Example:
//
//	key := GetNamespaceEnvKey("TASKCLOCK", "STORE_KEY")
//	// Returns: "TASKCLOCK_STORE_KEY"
func GetNamespaceEnvKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", namespace, key)
}

// GetNamespaceEnvOrDefault retrieves a namespaced environment variable value,
// returning a fallback value if the variable is not set.
//
// Example:
//
//	// Looks for TASKCLOCK_PORT, returns ":3000" if not found
//	port := GetNamespaceEnvOrDefault("TASKCLOCK", "PORT", ":3000")
func GetNamespaceEnvOrDefault(namespace, key, fallback string) string {
	return GetEnvOrDefault(GetNamespaceEnvKey(namespace, key), fallback)
}

// GetNamespaceEnvValue retrieves the value of a namespaced environment variable.
// Unlike GetNamespaceEnvOrDefault, this returns an empty string if the variable
// is not set.
//
// Note: This function cannot distinguish between an unset variable and a
// variable set to an empty string. Use os.LookupEnv directly if you need
// to make this distinction.
func GetNamespaceEnvValue(namespace, key string) string {
	return os.Getenv(GetNamespaceEnvKey(namespace, key))
}
