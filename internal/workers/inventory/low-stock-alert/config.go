// internal/workers/inventory/low-stock-alert/config.go
package lowstockalert

import (
	"time"

	"support-chatbot/internal/common/config"
)

type Config struct {
	Timeout          time.Duration
	DefaultThreshold int
	MaxListed        int
}

func NewConfig(appConfig *config.Config) *Config {
	wcfg := config.GetWorkerConfig(appConfig, TaskType)
	return &Config{
		Timeout:          config.GetDuration(wcfg.Timeout),
		DefaultThreshold: appConfig.Inventory.LowStockThreshold,
		MaxListed:        20,
	}
}
