// Package llm вызывает OpenAI-совместимые chat completion эндпоинты
// и переключается между ними при сбоях.
package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// BackendConfig описывает одну запись models.json
type BackendConfig struct {
	ID          string `json:"id"`
	APIKey      string `json:"apiKey"`
	Endpoint    string `json:"openai_endpoint"`
	DisplayName string `json:"displayName"`
	Provider    string `json:"provider"`
}

// LoadBackends читает список бэкендов из JSON файла.
// Неполные записи пропускаются с предупреждением.
func LoadBackends(path string, logger *slog.Logger) ([]BackendConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read models file: %w", err)
	}
	return ParseBackends(data, logger)
}

// ParseBackends разбирает содержимое models.json
func ParseBackends(data []byte, logger *slog.Logger) ([]BackendConfig, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("models file must contain a list of backends: %w", err)
	}

	backends := make([]BackendConfig, 0, len(entries))
	for i, raw := range entries {
		var cfg BackendConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			logger.Warn("skipping invalid model entry", "index", i, "error", err)
			continue
		}

		cfg.ID = strings.TrimSpace(cfg.ID)
		cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
		if cfg.ID == "" || cfg.APIKey == "" || cfg.Endpoint == "" {
			logger.Warn("skipping incomplete model entry", "index", i, "id", cfg.ID)
			continue
		}
		if cfg.DisplayName == "" {
			cfg.DisplayName = cfg.ID
		}
		if cfg.Provider == "" {
			cfg.Provider = "unknown"
		}

		backends = append(backends, cfg)
		logger.Info("loaded model configuration", "display_name", cfg.DisplayName, "id", cfg.ID)
	}

	if len(backends) == 0 {
		logger.Warn("no valid model configurations loaded")
	}

	return backends, nil
}
