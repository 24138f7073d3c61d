package domain

import "time"

// CSO 表示一个注册的社会组织，是信函的收件方。
type CSO struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone     string    `json:"phone" gorm:"type:varchar(32);index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定 gorm 表名，沿用历史单数表名
func (CSO) TableName() string { return "cso" }
