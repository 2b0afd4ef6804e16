// Package application 审计服务的用例层
package application

import (
	"context"

	"github.com/wyfcoding/analyticalplatform/internal/audit/domain"
	"github.com/wyfcoding/analyticalplatform/pkg/logger"
)

// Recorder 审计记录接口，业务服务依赖此接口而非具体实现
type Recorder interface {
	// Record 尽力而为地记录审计事件，绝不向调用方返回错误
	Record(ctx context.Context, actor, action, entityType, entityID, details string)
}

// AuditService 审计应用服务
type AuditService struct {
	repo domain.AuditRepository
}

// NewAuditService 创建审计应用服务
func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record 记录审计事件
// 审计失败只记日志，永远不影响触发它的业务操作
func (s *AuditService) Record(ctx context.Context, actor, action, entityType, entityID, details string) {
	log := &domain.AuditLog{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}

	if err := s.repo.Save(ctx, log); err != nil {
		logger.Error(ctx, "Failed to record audit log",
			"actor", actor,
			"action", action,
			"entity_type", entityType,
			"error", err,
		)
	}
}

// RecentLogs 查询最近的审计记录
func (s *AuditService) RecentLogs(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.FindRecent(ctx, limit)
}

// LogsByActor 查询某个操作者的审计记录
func (s *AuditService) LogsByActor(ctx context.Context, actor string, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.FindByActor(ctx, actor, limit)
}
