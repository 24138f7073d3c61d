package domain

import "time"

// HeroSlide 表示首页轮播图的一帧。
type HeroSlide struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ImagePath string    `json:"image_url" gorm:"column:image_url;type:varchar(255);not null"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Subtitle  string    `json:"subtitle,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定 gorm 表名
func (HeroSlide) TableName() string { return "hero_slides" }

// About 是"关于我们"单例内容。
// CoreValues 存 JSON 数组文本。
type About struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Introduction string    `json:"introduction" gorm:"type:text;not null"`
	Mission      string    `json:"mission" gorm:"type:text;not null"`
	Vision       string    `json:"vision" gorm:"type:text;not null"`
	Purpose      string    `json:"purpose" gorm:"type:text;not null"`
	CoreValues   string    `json:"core_values" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 指定 gorm 表名
func (About) TableName() string { return "about_us" }

// ContactContent 是联系页单例内容。
// Email 和 Phone 列存 JSON 数组文本，允许多个联系方式。
type ContactContent struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PageTitle   string    `json:"page_title" gorm:"type:varchar(255);not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Email       string    `json:"email,omitempty" gorm:"type:text"`
	Phone       string    `json:"phone,omitempty" gorm:"type:text"`
	Location    string    `json:"location,omitempty" gorm:"type:varchar(255)"`
	Address     string    `json:"address,omitempty" gorm:"type:varchar(255)"`
	MapEmbedURL string    `json:"map_embed_url,omitempty" gorm:"type:text"`
	ImageURL    string    `json:"image_url,omitempty" gorm:"type:text"`
	Facebook    string    `json:"facebook_link,omitempty" gorm:"column:facebook_link;type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定 gorm 表名
func (ContactContent) TableName() string { return "contact_content" }

// ContactMessage 是访客通过联系表单发来的消息，
// 不落库，经 SMTP 转发给办公室邮箱。
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Service 表示机构对外提供的一项服务条目。
type Service struct {
	ID      int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Title   string `json:"title" gorm:"type:varchar(255);not null"`
	Summary string `json:"summary" gorm:"type:text;not null"`
}

// TableName 指定 gorm 表名
func (Service) TableName() string { return "services" }
