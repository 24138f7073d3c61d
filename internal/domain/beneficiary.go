package domain

import (
	"fmt"
	"time"
)

// Beneficiary 表示受益人档案。
// BeneficiaryID 在首次插入后由数据库自增 id 派生，形如 LA-00042。
type Beneficiary struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	BeneficiaryID string    `json:"beneficiary_id" gorm:"type:varchar(32);uniqueIndex"`
	FullName      string    `json:"fullName" gorm:"type:varchar(255);not null"`
	Email         string    `json:"email" gorm:"type:varchar(255);index"`
	Phone         string    `json:"phone" gorm:"type:varchar(32);index"`
	Address       string    `json:"address" gorm:"type:varchar(512)"`
	IDFilePath    *string   `json:"idFile,omitempty" gorm:"column:id_file;type:varchar(512)"`
	PhotoPath     *string   `json:"photo,omitempty" gorm:"type:varchar(512)"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName 指定 gorm 表名
func (Beneficiary) TableName() string { return "beneficiaries" }

// FormatBeneficiaryID 由数据库自增 id 生成受益人编号
func FormatBeneficiaryID(id int64) string {
	return fmt.Sprintf("LA-%05d", id)
}
