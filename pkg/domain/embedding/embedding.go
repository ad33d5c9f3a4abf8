package embedding

import (
	"errors"
	"time"
)

var ErrProviderNonOKResponse = errors.New("embedding provider returned non-OK response")

type Embedding struct {
	EntityID  string    `json:"entity_id"`
	Value     []float64 `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

type Credentials struct {
	ApiKey string `json:"api_key,omitempty"`
}

type Config struct {
	Provider    string      `json:"provider"`
	Model       string      `json:"model"`
	Credentials Credentials `json:"credentials"`
}
