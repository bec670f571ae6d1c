package telegram

import (
	"slices"

	"spirit-bot/internal/config"
)

// AdminChecker decides who may use the admin panel and operator actions.
// The operator is always an admin.
type AdminChecker struct {
	adminIDs []int64
}

func NewAdminChecker(cfg *config.TelegramConfig) *AdminChecker {
	ids := append([]int64{cfg.OperatorID}, cfg.AdminIDs...)
	slices.Sort(ids)
	return &AdminChecker{
		adminIDs: slices.Compact(ids),
	}
}

func (a *AdminChecker) IsAdmin(telegramID int64) bool {
	return slices.Contains(a.adminIDs, telegramID)
}

func (a *AdminChecker) IDs() []int64 {
	return a.adminIDs
}
