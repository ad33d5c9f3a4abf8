package moderationapi

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// ParseThresholds decodes an operator-supplied threshold map, overlaying it
// on the defaults so partial overrides keep the tuned values for everything
// else.
func ParseThresholds(raw map[string]interface{}) (map[string]float64, error) {
	thresholds := make(map[string]float64, len(DefaultThresholds))
	for category, value := range DefaultThresholds {
		thresholds[category] = value
	}
	if len(raw) == 0 {
		return thresholds, nil
	}

	var overrides map[string]float64
	if err := mapstructure.WeakDecode(raw, &overrides); err != nil {
		return nil, fmt.Errorf("invalid moderation thresholds: %w", err)
	}
	for category, value := range overrides {
		if value < 0 || value > 1 {
			return nil, fmt.Errorf("moderation threshold for %s out of range: %f", category, value)
		}
		thresholds[category] = value
	}
	return thresholds, nil
}
