// Package kv defines the key-value store that holds client-local state
// (filter preferences, budgets, theme) and its memory and file backends.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Namespaced keys. The version suffix changes whenever the blob shape does.
const (
	KeyFilters  = "filters:v1"
	KeyBudgets  = "budgets:v1"
	KeyDarkMode = "pref:dark"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is a string-keyed blob store. Every operation may fail; callers
// holding client preferences treat failures as best-effort.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// GetJSON decodes the JSON blob under key into v.
func GetJSON(s Store, key string, v any) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("kv: decoding %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v as JSON and stores it under key.
func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv: encoding %s: %w", key, err)
	}
	return s.Set(key, data)
}
