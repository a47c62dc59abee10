package ledger

import (
	"github.com/google/uuid"

	"github.com/ledgerbook/backend/internal/domain/shared"
)

// ActivityLog is a fire-and-forget audit row. Failures to write one are
// logged and swallowed; posting correctness never depends on it.
type ActivityLog struct {
	shared.TenantAggregateRoot
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Action  string    `gorm:"type:varchar(100);not null;index"`
	Details string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// NewActivityLog creates an audit row
func NewActivityLog(tenantID, userID uuid.UUID, action, details string) *ActivityLog {
	return &ActivityLog{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		Action:              action,
		Details:             details,
	}
}
