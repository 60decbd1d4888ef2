// internal/workers/chatbot/answer-customer-message/config.go
package answercustomermessage

import (
	"time"

	"support-chatbot/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func NewConfig(appConfig *config.Config) *Config {
	wcfg := config.GetWorkerConfig(appConfig, TaskType)
	return &Config{
		Timeout: config.GetDuration(wcfg.Timeout),
	}
}
