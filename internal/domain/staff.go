package domain

import (
	"fmt"
	"time"
)

// 员工角色
const (
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
	RoleSupAdmin = "sup_admin"
)

// IsAdminRole 判断角色是否具有管理权限
func IsAdminRole(role string) bool {
	return role == RoleAdmin || role == RoleSupAdmin
}

// IsValidStaffRole 判断角色取值是否合法
func IsValidStaffRole(role string) bool {
	return role == RoleStaff || role == RoleAdmin || role == RoleSupAdmin
}

// Staff 表示机构员工账号。
// Password 存 bcrypt 哈希，永不出现在 JSON 输出中。
type Staff struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	RegistrationID string    `json:"registrationId" gorm:"type:varchar(32);uniqueIndex"`
	Name           string    `json:"name" gorm:"type:varchar(255);not null"`
	Email          string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone          string    `json:"phone" gorm:"type:varchar(32);index"`
	Password       string    `json:"-" gorm:"type:varchar(128);not null"`
	Role           string    `json:"role" gorm:"type:varchar(32);default:staff"`
	PhotoPath      *string   `json:"photo,omitempty" gorm:"type:varchar(512)"`
	EmailVerified  bool      `json:"email_verified" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName 指定 gorm 表名
func (Staff) TableName() string { return "staff" }

// FormatStaffRegistrationID 生成员工编号，形如 Staff-0001
func FormatStaffRegistrationID(n int) string {
	return fmt.Sprintf("Staff-%04d", n)
}
