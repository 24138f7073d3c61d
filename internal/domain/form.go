package domain

import "time"

// 申请状态
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// IsValidApplicationStatus 校验申请状态取值
func IsValidApplicationStatus(s string) bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	}
	return false
}

// Form 表示管理端发布的申请表模板。
// Schema 存 JSON Schema 文本，发布时校验其本身是合法 schema，
// 提交的申请数据按它校验。
type Form struct {
	ID        int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	FormName  string     `json:"form_name" gorm:"type:varchar(255);not null"`
	Schema    string     `json:"schema" gorm:"column:form_schema;type:text;not null"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedBy int64      `json:"createdBy" gorm:"index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName 指定 gorm 表名
func (Form) TableName() string { return "forms" }

// Expired 判断模板在给定时刻是否已过期
func (f *Form) Expired(now time.Time) bool {
	return f.ExpiresAt != nil && now.After(*f.ExpiresAt)
}

// Application 表示某组织对某模板提交的一份申请。
// 每个 (form_id, cso_id) 至多一份；重新提交替换文件并删除旧文件。
type Application struct {
	ID               int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	FormID           int64     `json:"form_id" gorm:"index;not null;uniqueIndex:uniq_form_cso"`
	CSOID            int64     `json:"cso_id" gorm:"index;not null;uniqueIndex:uniq_form_cso"`
	Payload          string    `json:"payload" gorm:"type:text"`
	FilePath         *string   `json:"file,omitempty" gorm:"type:varchar(512)"`
	FileName         *string   `json:"file_name,omitempty" gorm:"type:varchar(255)"`
	Status           string    `json:"status" gorm:"type:varchar(32);default:pending;index"`
	UpdatePermission bool      `json:"update_permission" gorm:"default:false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName 指定 gorm 表名
func (Application) TableName() string { return "applications" }
