package domain

import "context"

// WalletRepository 钱包仓储接口
type WalletRepository interface {
	// Create 创建钱包，用户已有钱包时返回 ErrWalletExists
	Create(ctx context.Context, wallet *Wallet) error
	// FindByUserID 按用户查询，未找到返回 (nil, nil)
	FindByUserID(ctx context.Context, userID uint64) (*Wallet, error)
	// Update 带版本比对的写入：持久化版本与读取版本不一致时
	// 返回 ErrVersionConflict，成功时递增版本号
	Update(ctx context.Context, wallet *Wallet) error
}
