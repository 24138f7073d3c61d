package domain

import "time"

// 信函类型枚举，与历史数据库中的 ENUM 取值保持一致。
const (
	LetterTypeMeeting      = "Meeting"
	LetterTypeAnnouncement = "Announcement"
	LetterTypeWarning      = "Warning"
)

// IsValidLetterType 校验信函类型是否为合法取值
func IsValidLetterType(t string) bool {
	switch t {
	case LetterTypeMeeting, LetterTypeAnnouncement, LetterTypeWarning:
		return true
	}
	return false
}

// Letter 表示管理端发往社会组织 (CSO) 的一封信函。
//
// SelectedCSOs 是收件组织已读状态的 JSON 编码列；空收件列表存 NULL
// 而不是 "[]"。该列的历史数据可能损坏，读取时通过 DecodeRecipients 修复。
type Letter struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title          string    `json:"title" gorm:"type:varchar(255);not null"`
	Summary        string    `json:"summary" gorm:"type:text"`
	Type           string    `json:"type" gorm:"type:varchar(32);not null;index"`
	AttachmentPath *string   `json:"attachment_path,omitempty" gorm:"type:varchar(512)"`
	AttachmentName *string   `json:"attachment_name,omitempty" gorm:"type:varchar(255)"`
	Mimetype       *string   `json:"mimetype,omitempty" gorm:"type:varchar(128)"`
	SendToAll      bool      `json:"send_to_all" gorm:"default:false;index"`
	SelectedCSOs   *string   `json:"-" gorm:"column:selected_csos;type:text"`
	CreatedBy      int64     `json:"created_by" gorm:"index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName 指定 gorm 表名
func (Letter) TableName() string { return "letters" }

// ReadSummary 汇总一封信函的收件已读情况
type ReadSummary struct {
	ReadCount   int `json:"readCount"`
	TotalCount  int `json:"totalCount"`
	UnreadCount int `json:"unreadCount"`
}

// LetterWithReads 是管理端视图：信函加解码后的收件状态与汇总。
type LetterWithReads struct {
	Letter
	Recipients []RecipientState `json:"selected_csos"`
	ReadSummary
}

// CSOLetterView 是收件组织视角的信函视图。
// 广播信函默认不跟踪已读，IsRead 恒为 false。
type CSOLetterView struct {
	Letter
	IsRead bool       `json:"isRead"`
	ReadAt *time.Time `json:"readAt,omitempty"`
}

// Summarize 统计收件状态列表的已读/未读数量
func Summarize(states []RecipientState) ReadSummary {
	s := ReadSummary{TotalCount: len(states)}
	for _, st := range states {
		if st.Read {
			s.ReadCount++
		}
	}
	s.UnreadCount = s.TotalCount - s.ReadCount
	return s
}
