package httptransport

import (
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	jwtpkg "csoportal/backend/internal/auth/jwt"
	"csoportal/backend/internal/config"
	"csoportal/backend/internal/health"
	"csoportal/backend/internal/middleware"
	"csoportal/backend/internal/monitoring"
	"csoportal/backend/internal/service"
	"csoportal/backend/internal/websocket"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config             *config.Config
	LetterService      *service.LetterService
	StaffService       *service.StaffService
	CSOService         *service.CSOService
	BeneficiaryService *service.BeneficiaryService
	FormService        *service.FormService
	NewsService        *service.NewsService
	ContentService     *service.ContentService
	JWTManager         *jwtpkg.Manager
	WebSocketHub       *websocket.Hub
	HealthChecker      *health.HealthChecker
	Logger             *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryHandler(deps.Logger))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics())
	router.Use(middleware.BodySizeLimit(middleware.DefaultBodyLimit))

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	// 创建处理器
	letterHandler := NewLetterHandler(deps.LetterService)
	staffHandler := NewStaffHandler(deps.StaffService)
	csoHandler := NewCSOHandler(deps.CSOService)
	beneficiaryHandler := NewBeneficiaryHandler(deps.BeneficiaryService)
	formHandler := NewFormHandler(deps.FormService)
	newsHandler := NewNewsHandler(deps.NewsService)
	contentHandler := NewContentHandler(deps.ContentService)

	// 创建中间件
	jwtAuth := middleware.NewJWTAuth(deps.JWTManager, deps.Logger)
	loginLimiter := middleware.NewRateLimiter(rate.Every(6*time.Second), 5)
	uploadLimit := middleware.BodySizeLimit(middleware.UploadBodyLimit)

	// 上传文件静态托管
	router.Static("/public", deps.Config.Upload.PublicDir)

	// 健康检查与指标
	router.GET("/health", gin.WrapH(deps.HealthChecker.Handler()))
	router.GET("/metrics", gin.WrapH(monitoring.Handler()))

	// WebSocket
	if deps.WebSocketHub != nil {
		router.GET("/ws", websocket.HandleWebSocket(deps.WebSocketHub))
	}

	// ========== Letter Routes ==========
	letterRoutes := router.Group("/letters")
	{
		letterRoutes.POST("/submit", jwtAuth.RequireAuth(), middleware.RequireAdmin(), uploadLimit, letterHandler.Submit)
		letterRoutes.GET("/", jwtAuth.RequireAuth(), letterHandler.List)
		letterRoutes.GET("/get/:id", jwtAuth.RequireAuth(), letterHandler.Get)
		letterRoutes.PUT("/:id", jwtAuth.RequireAuth(), middleware.RequireAdmin(), uploadLimit, letterHandler.Update)
		letterRoutes.DELETE("/:id", jwtAuth.RequireAuth(), middleware.RequireAdmin(), letterHandler.Delete)

		// 组织端入口：门户前端代表组织调用，无职员会话
		letterRoutes.GET("/cso/:csoId", letterHandler.ListForCSO)
		letterRoutes.PUT("/:id/mark-read/:csoId", letterHandler.MarkRead)
		letterRoutes.GET("/cso/:csoId/unread-count", letterHandler.UnreadCount)
	}

	// ========== Staff Routes ==========
	staffRoutes := router.Group("/staff")
	{
		staffRoutes.POST("/register", jwtAuth.RequireAuth(), middleware.RequireSupAdmin(), uploadLimit, staffHandler.Register)
		staffRoutes.POST("/login", loginLimiter.Limit(), staffHandler.Login)
		staffRoutes.POST("/refresh", staffHandler.Refresh)
		staffRoutes.GET("/me", jwtAuth.RequireAuth(), staffHandler.Me)
		staffRoutes.GET("/", jwtAuth.RequireAuth(), middleware.RequireAdmin(), staffHandler.List)
		staffRoutes.GET("/:id", jwtAuth.RequireAuth(), middleware.RequireAdmin(), staffHandler.Get)
		staffRoutes.PUT("/:id", jwtAuth.RequireAuth(), middleware.RequireSupAdmin(), uploadLimit, staffHandler.Update)
		staffRoutes.DELETE("/:id", jwtAuth.RequireAuth(), middleware.RequireSupAdmin(), staffHandler.Delete)
	}

	// ========== CSO Routes ==========
	csoRoutes := router.Group("/csos")
	{
		csoRoutes.POST("/", jwtAuth.RequireAuth(), middleware.RequireAdmin(), csoHandler.Create)
		csoRoutes.GET("/", csoHandler.List)
		csoRoutes.GET("/:id", csoHandler.Get)
		csoRoutes.PUT("/:id", jwtAuth.RequireAuth(), middleware.RequireAdmin(), csoHandler.Update)
		csoRoutes.DELETE("/:id", jwtAuth.RequireAuth(), middleware.RequireAdmin(), csoHandler.Delete)
	}

	// ========== Beneficiary Routes ==========
	beneficiaryRoutes := router.Group("/beneficiaries")
	beneficiaryRoutes.Use(jwtAuth.RequireAuth())
	{
		beneficiaryRoutes.POST("/", uploadLimit, beneficiaryHandler.Create)
		beneficiaryRoutes.GET("/", beneficiaryHandler.List)
		beneficiaryRoutes.GET("/:id", beneficiaryHandler.Get)
		beneficiaryRoutes.PUT("/:id", uploadLimit, beneficiaryHandler.Update)
		beneficiaryRoutes.DELETE("/:id", middleware.RequireAdmin(), beneficiaryHandler.Delete)
	}

	// ========== Form Routes ==========
	formRoutes := router.Group("/forms")
	{
		formRoutes.POST("/", jwtAuth.RequireAuth(), middleware.RequireAdmin(), formHandler.CreateForm)
		formRoutes.GET("/", formHandler.ListForms)
		formRoutes.GET("/:id", formHandler.GetForm)
		formRoutes.PUT("/:id", jwtAuth.RequireAuth(), middleware.RequireAdmin(), formHandler.UpdateForm)
		formRoutes.DELETE("/:id", jwtAuth.RequireAuth(), middleware.RequireAdmin(), formHandler.DeleteForm)

		// 申请提交为组织端入口
		formRoutes.POST("/:id/applications", uploadLimit, formHandler.SubmitApplication)
		formRoutes.GET("/:id/applications", jwtAuth.RequireAuth(), formHandler.ListApplicationsByForm)
	}

	// ========== Application Routes ==========
	applicationRoutes := router.Group("/applications")
	{
		applicationRoutes.GET("/cso/:csoId", formHandler.ListApplicationsByCSO)
		applicationRoutes.GET("/:id", jwtAuth.RequireAuth(), formHandler.GetApplication)
		applicationRoutes.PUT("/:id", uploadLimit, formHandler.UpdateApplication)
		applicationRoutes.PATCH("/:id/status", jwtAuth.RequireAuth(), middleware.RequireAdmin(), formHandler.SetApplicationStatus)
		applicationRoutes.PATCH("/:id/permission", jwtAuth.RequireAuth(), middleware.RequireAdmin(), formHandler.SetUpdatePermission)
		applicationRoutes.DELETE("/:id", jwtAuth.RequireAuth(), middleware.RequireAdmin(), formHandler.DeleteApplication)
	}

	// ========== News Routes ==========
	newsRoutes := router.Group("/news")
	{
		newsRoutes.POST("/", jwtAuth.RequireAuth(), middleware.RequireAdmin(), uploadLimit, newsHandler.Create)
		newsRoutes.GET("/", newsHandler.List)
		newsRoutes.GET("/:id", newsHandler.Get)
		newsRoutes.PUT("/:id", jwtAuth.RequireAuth(), middleware.RequireAdmin(), uploadLimit, newsHandler.Update)
		newsRoutes.DELETE("/:id", jwtAuth.RequireAuth(), middleware.RequireAdmin(), newsHandler.Delete)

		// 评论对访客开放，职员评论经 OptionalAuth 识别身份
		newsRoutes.POST("/:id/comments", jwtAuth.OptionalAuth(), newsHandler.AddComment)
		newsRoutes.GET("/:id/comments", newsHandler.ListComments)
		newsRoutes.DELETE("/comments/:commentId", jwtAuth.RequireAuth(), middleware.RequireAdmin(), newsHandler.DeleteComment)
	}

	// ========== Hero Routes ==========
	heroRoutes := router.Group("/hero")
	{
		heroRoutes.POST("/", jwtAuth.RequireAuth(), middleware.RequireAdmin(), uploadLimit, contentHandler.CreateHeroSlide)
		heroRoutes.GET("/", contentHandler.ListHeroSlides)
		heroRoutes.PUT("/:id", jwtAuth.RequireAuth(), middleware.RequireAdmin(), uploadLimit, contentHandler.UpdateHeroSlide)
		heroRoutes.DELETE("/:id", jwtAuth.RequireAuth(), middleware.RequireAdmin(), contentHandler.DeleteHeroSlide)
	}

	// ========== About Routes ==========
	aboutRoutes := router.Group("/about")
	{
		aboutRoutes.GET("/", contentHandler.GetAbout)
		aboutRoutes.PUT("/", jwtAuth.RequireAuth(), middleware.RequireAdmin(), contentHandler.SaveAbout)
	}

	// ========== Contact Routes ==========
	contactRoutes := router.Group("/contact")
	{
		contactRoutes.GET("/", contentHandler.GetContactContent)
		contactRoutes.PUT("/", jwtAuth.RequireAuth(), middleware.RequireAdmin(), contentHandler.SaveContactContent)
		contactRoutes.POST("/message", contentHandler.RelayContactMessage)
	}

	// ========== Service Routes ==========
	serviceRoutes := router.Group("/services")
	{
		serviceRoutes.POST("/", jwtAuth.RequireAuth(), middleware.RequireAdmin(), contentHandler.CreateService)
		serviceRoutes.GET("/", contentHandler.ListServices)
		serviceRoutes.PUT("/:id", jwtAuth.RequireAuth(), middleware.RequireAdmin(), contentHandler.UpdateService)
		serviceRoutes.DELETE("/:id", jwtAuth.RequireAuth(), middleware.RequireAdmin(), contentHandler.DeleteService)
	}

	return router
}
