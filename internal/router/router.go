package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"pqsaaay/internal/config"
	"pqsaaay/internal/handlers"
	"pqsaaay/internal/middleware"
	"pqsaaay/internal/services"
	"pqsaaay/internal/store"
)

const sessionName = "pqsaaay_session"

// New builds the engine with its middleware chain and routes.
func New(cfg *config.Config, st *store.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	sessionStore := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   365 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, sessionStore))
	r.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))

	RegisterRoutes(r, services.New(st), st, cfg.Server.SiteURL)
	return r
}

func corsConfig(origins []string) cors.Config {
	conf := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			// 通配时不能携带凭证
			conf.AllowAllOrigins = true
			conf.AllowCredentials = false
			return conf
		}
	}
	conf.AllowOrigins = origins
	return conf
}

func RegisterRoutes(r *gin.Engine, svc *services.Services, st *store.Store, siteURL string) {
	// Handlers
	postHandler := handlers.NewPostHandler(svc.Posts)
	commentHandler := handlers.NewCommentHandler(svc.Comments)
	votingHandler := handlers.NewVotingHandler(svc.Votings)
	statsHandler := handlers.NewStatsHandler(svc.Stats, st)
	feedHandler := handlers.NewFeedHandler(svc.Posts, siteURL)

	r.GET("/health", statsHandler.Health) // 健康检查
	r.GET("/feed.xml", feedHandler.RSSFeed)

	api := r.Group("/api")
	{
		api.GET("/posts", postHandler.List)       // 帖子列表
		api.GET("/posts/:id", postHandler.Detail) // 帖子详情
		api.POST("/posts", postHandler.Create)    // 发布帖子
		api.PATCH("/posts", postHandler.Update)   // 表情回应 / 投票

		api.GET("/comments", commentHandler.List)    // 帖子评论
		api.POST("/comments", commentHandler.Create) // 发表评论
		api.PATCH("/comments", commentHandler.React) // 评论表情回应

		api.GET("/stats", statsHandler.Stats)
		api.GET("/reactions", statsHandler.Reactions) // 默认表情列表
	}

	voting := api.Group("/voting")
	voting.Use(middleware.VoterIdentity())
	{
		voting.GET("", votingHandler.List)             // 投票列表 / 详情
		voting.POST("", votingHandler.Post)            // 创建投票或提交选择
		voting.POST("/:id/close", votingHandler.Close) // 关闭投票
	}
}
