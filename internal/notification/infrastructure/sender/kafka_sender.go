// Package sender 通知投递的传输实现
package sender

import (
	"context"
	"strconv"

	"github.com/wyfcoding/analyticalplatform/internal/notification/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/mq"
)

// KafkaSender 将通知推送到 Kafka，由下游消费者完成实际投递
type KafkaSender struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaSender 创建 Kafka 发送器
func NewKafkaSender(producer *mq.KafkaProducer, topic string) domain.Sender {
	return &KafkaSender{
		producer: producer,
		topic:    topic,
	}
}

// Send 将通知推送到消息队列
// 使用用户 ID 做 Key，保证同一接收者的时序性
func (s *KafkaSender) Send(ctx context.Context, notification *domain.Notification) error {
	key := strconv.FormatUint(notification.UserID, 10)
	return s.producer.SendMessage(ctx, s.topic, key, notification)
}
