package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"reel/internal/ai/component"
	"reel/internal/config"
	"reel/internal/handler"
	scriptHandler "reel/internal/handler/script"
	"reel/internal/pkg/ark"
	"reel/internal/pkg/cache"
	"reel/internal/pkg/mongodb"
	"reel/internal/pkg/scripttools"
	"reel/internal/pkg/scripttools/providers"
	"reel/internal/pkg/storagefactory"
	"reel/internal/pkg/tts"
	scriptRepo "reel/internal/repository/script"
	"reel/internal/server/middleware"
	scriptService "reel/internal/service/script"
)

// Server HTTP 服务器
type Server struct {
	cfg     *config.Config
	engine  *gin.Engine
	mongo   *mongodb.Client
	redis   *cache.RedisCache
	scripts scriptService.ScriptService
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	srv := &Server{
		cfg:    cfg,
		engine: gin.New(),
	}

	// 初始化 MongoDB（脚本接口依赖它）
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without it")
		} else {
			srv.mongo = client
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			if err := mongodb.EnsureIndexes(ctx, client.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
		}
	}

	// 初始化 Redis (可选)
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			srv.redis = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	if srv.mongo != nil {
		svc, err := srv.newScriptService(ctx)
		if err != nil {
			return nil, fmt.Errorf("init script service: %w", err)
		}
		srv.scripts = svc
	}

	srv.setupRoutes()
	return srv, nil
}

// newScriptService 组装脚本服务；LLM 和 TTS 未配置时对应功能不可用
func (s *Server) newScriptService(ctx context.Context) (scriptService.ScriptService, error) {
	store, err := storagefactory.NewStorage(ctx, &s.cfg.Storage)
	if err != nil {
		return nil, err
	}

	deps := scriptService.Deps{
		Repo:     scriptRepo.NewScriptRepo(s.mongo.Database()),
		Storage:  store,
		Pipeline: s.cfg.Pipeline,
	}
	if s.redis != nil {
		deps.Cache = s.redis
	}

	if s.cfg.AI.APIKey != "" {
		llm, err := newLLMProvider(ctx, &s.cfg.AI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize LLM provider, script generation disabled")
		} else {
			deps.LLM = llm
			log.Info().Str("provider", s.cfg.AI.Provider).Str("client", s.cfg.AI.Client).Msg("initialized LLM provider")
		}
	} else {
		log.Warn().Msg("AI api key not configured, script generation disabled")
	}

	if s.cfg.TTS.APIKey != "" {
		client, err := tts.NewClient(s.cfg.TTS)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize TTS client, voice synthesis disabled")
		} else {
			deps.Speech = providers.NewElevenLabsProvider(client)
		}
	}

	var tokenizer scripttools.Tokenizer
	if gt, err := scripttools.NewGseTokenizer(); err != nil {
		log.Warn().Err(err).Msg("failed to load gse dictionary, falling back to whitespace tokens")
	} else {
		tokenizer = gt
	}

	return scriptService.NewScriptService(deps, tokenizer)
}

func newLLMProvider(ctx context.Context, cfg *config.AIConfig) (scripttools.LLMProvider, error) {
	if cfg.Client == "ark-native" {
		client, err := ark.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return providers.NewArkProvider(client), nil
	}

	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return providers.NewEinoProvider(chatModel), nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	deps := map[string]handler.Pinger{}
	if s.mongo != nil {
		deps["mongo"] = s.mongo
	}
	if s.redis != nil {
		deps["redis"] = s.redis
	}
	healthHandler := handler.NewHealthHandler(deps)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	if s.scripts == nil {
		log.Warn().Msg("MongoDB not configured, script endpoints disabled")
		return
	}

	h := scriptHandler.NewHandler(s.scripts)
	scripts := v1.Group("/scripts")
	{
		scripts.POST("/generate", h.GenerateScript)
		scripts.POST("/reconcile", h.ReconcileScript)
		scripts.POST("", h.CreateScript)
		scripts.GET("", h.ListScripts)
		scripts.GET("/:script_id", h.GetScript)
		scripts.POST("/:script_id/finalize", h.FinalizeScript)
		scripts.PUT("/:script_id/sections/:section_id/audio", h.UploadAudio)
	}
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		if s.mongo != nil {
			if err := s.mongo.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
