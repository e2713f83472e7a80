package setup

import (
	"fmt"

	"github.com/0xEcho/cloudfile/internal/config"
	"github.com/0xEcho/cloudfile/internal/pkg/logger"
	"github.com/0xEcho/cloudfile/internal/pkg/mq"
)

// InitRabbitMQ 建立 RabbitMQ 连接
func InitRabbitMQ(cfg *config.RabbitMQConfig) (*mq.RabbitMQClient, error) {
	client, err := mq.NewRabbitMQClient(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to init RabbitMQ client: %w", err)
	}

	logger.Info("RabbitMQ 连接成功")
	return client, nil
}
