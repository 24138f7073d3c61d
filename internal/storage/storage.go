package storage

import (
	"errors"

	"csoportal/backend/internal/domain"
)

var (
	// ErrLetterNotFound 信函未找到错误
	ErrLetterNotFound = errors.New("letter not found")
	// ErrStaffNotFound 员工未找到错误
	ErrStaffNotFound = errors.New("staff not found")
	// ErrStaffExists 员工邮箱或电话已被占用错误
	ErrStaffExists = errors.New("staff already exists")
	// ErrCSONotFound 社会组织未找到错误
	ErrCSONotFound = errors.New("cso not found")
	// ErrCSOExists 社会组织已存在错误
	ErrCSOExists = errors.New("cso already exists")
	// ErrBeneficiaryNotFound 受益人未找到错误
	ErrBeneficiaryNotFound = errors.New("beneficiary not found")
	// ErrBeneficiaryExists 受益人邮箱或电话已被占用错误
	ErrBeneficiaryExists = errors.New("beneficiary already exists")
	// ErrFormNotFound 申请表模板未找到错误
	ErrFormNotFound = errors.New("form not found")
	// ErrApplicationNotFound 申请未找到错误
	ErrApplicationNotFound = errors.New("application not found")
	// ErrApplicationExists 同一组织重复提交同一模板错误
	ErrApplicationExists = errors.New("application already exists")
	// ErrNewsNotFound 新闻未找到错误
	ErrNewsNotFound = errors.New("news not found")
	// ErrCommentNotFound 评论未找到错误
	ErrCommentNotFound = errors.New("comment not found")
	// ErrHeroSlideNotFound 轮播图未找到错误
	ErrHeroSlideNotFound = errors.New("hero slide not found")
	// ErrAboutNotFound 关于页内容未配置错误
	ErrAboutNotFound = errors.New("about content not found")
	// ErrContactContentNotFound 联系页内容未配置错误
	ErrContactContentNotFound = errors.New("contact content not found")
	// ErrServiceNotFound 服务条目未找到错误
	ErrServiceNotFound = errors.New("service not found")
)

// LetterRepository 定义信函数据存取操作。
//
// ListLettersForCSO 和 ListTargetedLetters 返回的是候选集：
// SQL 实现用 LIKE 对 selected_csos 做预筛选，可能含误报，
// 调用方必须解码收件列表做最终确认。
type LetterRepository interface {
	SaveLetter(letter *domain.Letter) error
	GetLetter(id int64) (*domain.Letter, error)
	ListLetters() ([]domain.Letter, error)
	UpdateLetter(letter *domain.Letter) error
	DeleteLetter(id int64) error
	// 广播信函或 selected_csos 疑似包含该组织的信函
	ListLettersForCSO(csoID int64) ([]domain.Letter, error)
	// 仅定向信函（send_to_all = false）中疑似包含该组织的信函
	ListTargetedLetters(csoID int64) ([]domain.Letter, error)
}

// StaffRepository 定义员工数据存取操作。
type StaffRepository interface {
	CreateStaff(staff *domain.Staff) error
	GetStaff(id int64) (*domain.Staff, error)
	GetStaffByEmail(email string) (*domain.Staff, error)
	// 按邮箱或电话查重，未找到返回 ErrStaffNotFound
	FindStaffByContact(email, phone string) (*domain.Staff, error)
	// 最近一次分配的员工编号，无员工时返回空串
	LatestStaffRegistrationID() (string, error)
	StaffRegistrationIDExists(registrationID string) (bool, error)
	ListStaff() ([]domain.Staff, error)
	UpdateStaff(staff *domain.Staff) error
	DeleteStaff(id int64) error
}

// CSORepository 定义社会组织名录存取操作。
type CSORepository interface {
	CreateCSO(cso *domain.CSO) error
	GetCSO(id int64) (*domain.CSO, error)
	FindCSOByContact(email, phone string) (*domain.CSO, error)
	ListCSOs() ([]domain.CSO, error)
	ListCSOsByIDs(ids []int64) ([]domain.CSO, error)
	UpdateCSO(cso *domain.CSO) error
	DeleteCSO(id int64) error
}

// BeneficiaryRepository 定义受益人档案存取操作。
type BeneficiaryRepository interface {
	CreateBeneficiary(b *domain.Beneficiary) error
	GetBeneficiary(id int64) (*domain.Beneficiary, error)
	FindBeneficiaryByContact(email, phone string) (*domain.Beneficiary, error)
	ListBeneficiaries() ([]domain.Beneficiary, error)
	UpdateBeneficiary(b *domain.Beneficiary) error
	DeleteBeneficiary(id int64) error
}

// FormRepository 定义申请表模板与申请的存取操作。
type FormRepository interface {
	CreateForm(form *domain.Form) error
	GetForm(id int64) (*domain.Form, error)
	ListForms() ([]domain.Form, error)
	UpdateForm(form *domain.Form) error
	DeleteForm(id int64) error

	CreateApplication(app *domain.Application) error
	GetApplication(id int64) (*domain.Application, error)
	GetApplicationByFormAndCSO(formID, csoID int64) (*domain.Application, error)
	ListApplicationsByForm(formID int64) ([]domain.Application, error)
	ListApplicationsByCSO(csoID int64) ([]domain.Application, error)
	UpdateApplication(app *domain.Application) error
	DeleteApplication(id int64) error
}

// NewsRepository 定义新闻与评论的存取操作。
type NewsRepository interface {
	CreateNews(news *domain.News) error
	GetNews(id int64) (*domain.News, error)
	ListNews() ([]domain.News, error)
	UpdateNews(news *domain.News) error
	DeleteNews(id int64) error

	CreateNewsComment(comment *domain.NewsComment) error
	GetNewsComment(id int64) (*domain.NewsComment, error)
	ListNewsComments(newsID int64) ([]domain.NewsComment, error)
	DeleteNewsComment(id int64) error
}

// ContentRepository 定义门户静态内容的存取操作。
type ContentRepository interface {
	CreateHeroSlide(slide *domain.HeroSlide) error
	GetHeroSlide(id int64) (*domain.HeroSlide, error)
	ListHeroSlides() ([]domain.HeroSlide, error)
	UpdateHeroSlide(slide *domain.HeroSlide) error
	DeleteHeroSlide(id int64) error

	// 单例内容：Save 不存在则插入，存在则覆盖
	GetAbout() (*domain.About, error)
	SaveAbout(about *domain.About) error
	GetContactContent() (*domain.ContactContent, error)
	SaveContactContent(content *domain.ContactContent) error

	CreateService(service *domain.Service) error
	GetService(id int64) (*domain.Service, error)
	ListServices() ([]domain.Service, error)
	UpdateService(service *domain.Service) error
	DeleteService(id int64) error
}

// Store 定义完整的存储接口。
type Store interface {
	LetterRepository
	StaffRepository
	CSORepository
	BeneficiaryRepository
	FormRepository
	NewsRepository
	ContentRepository

	// 工具方法
	Close() error
	Health() error
}
