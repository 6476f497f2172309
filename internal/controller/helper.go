package controller

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/alicehocane/watch/pkg/validator"
)

func (c controller) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]any{"error": message}); err != nil {
		c.logger.Debug("failed to write error response", "error", err)
	}
}

func decode[T any](v *validator.Validator, payload []byte) (T, error) {
	var input T

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &input); err != nil {
			return input, fmt.Errorf("failed to decode payload: %w", err)
		}
	}

	if validationErrors, ok := v.Validate(input); !ok {
		return input, fmt.Errorf("invalid payload: %v", validationErrors)
	}

	return input, nil
}
