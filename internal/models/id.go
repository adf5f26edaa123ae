package models

import (
	"strings"

	"github.com/google/uuid"
)

// NewID generates a prefixed identifier such as "item_4f2a9c01d3b8".
func NewID(prefix string) string {
	return prefix + "_" + hexUUID()[:12]
}

// NewSessionToken generates an opaque session token.
func NewSessionToken() string {
	return "session_" + hexUUID()
}

func hexUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
