// Package eventbus 成交事件的 Kafka 发布实现
package eventbus

import (
	"context"
	"strconv"

	"github.com/wyfcoding/analyticalplatform/internal/trading/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/mq"
)

// KafkaPublisher 将成交流水发布到 Kafka，供下游风控与对账消费
type KafkaPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaPublisher 创建发布器实例
func NewKafkaPublisher(producer *mq.KafkaProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// PublishTrade 发布一条成交事件，以用户 ID 为分区键保证同一用户事件有序
func (p *KafkaPublisher) PublishTrade(ctx context.Context, tx *domain.Transaction) error {
	return p.producer.SendMessage(ctx, p.topic, strconv.FormatUint(tx.UserID, 10), tx)
}
