package domain

import "time"

// News 表示门户上的一条新闻。
type News struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	ImagePath   *string   `json:"image,omitempty" gorm:"type:varchar(512)"`
	Author      string    `json:"author" gorm:"type:varchar(100);not null"`
	ReadTime    string    `json:"read_time,omitempty" gorm:"type:varchar(20)"`
	Tag         string    `json:"tag,omitempty" gorm:"type:varchar(50)"`
	Quotes      string    `json:"quotes,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定 gorm 表名
func (News) TableName() string { return "news" }

// NewsComment 表示新闻下的一条评论。
// StaffID 非空时表示员工回复，展示时解析为员工姓名。
type NewsComment struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	NewsID    int64     `json:"news_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Email     string    `json:"email" gorm:"type:varchar(100)"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	StaffID   *int64    `json:"staff_id,omitempty" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定 gorm 表名
func (NewsComment) TableName() string { return "news_comments" }
