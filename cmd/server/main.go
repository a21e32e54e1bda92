package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/qs3c/aiseo_go_server/config"
	"github.com/qs3c/aiseo_go_server/internal/analyzer"
	"github.com/qs3c/aiseo_go_server/internal/api"
	"github.com/qs3c/aiseo_go_server/internal/api/handler"
	"github.com/qs3c/aiseo_go_server/internal/database"
	"github.com/qs3c/aiseo_go_server/internal/pkg/cron"
	"github.com/qs3c/aiseo_go_server/internal/pkg/oss"
	"github.com/qs3c/aiseo_go_server/internal/pkg/pubsub"
	"github.com/qs3c/aiseo_go_server/internal/pkg/ws"
	"github.com/qs3c/aiseo_go_server/internal/provider"
	"github.com/qs3c/aiseo_go_server/internal/repository"
	"github.com/qs3c/aiseo_go_server/internal/service"
	"github.com/qs3c/aiseo_go_server/internal/store"
)

const configPath = "config.yaml"

func main() {
	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化任务存储
	jobStore, err := newJobStore(cfg)
	if err != nil {
		log.Fatalf("Failed to init job store: %v", err)
	}
	log.Printf("Job store ready (driver: %s)", cfg.Storage.Driver)

	// 初始化事件广播
	broker, err := newBroker(cfg)
	if err != nil {
		log.Fatalf("Failed to init event broker: %v", err)
	}

	// 服务商注册表：每次提交 / /providers 请求时重读凭证构建，
	// 改密钥不用重启进程
	registrySource := newRegistrySource(cfg)
	enabled := registrySource().Enabled()
	if len(enabled) == 0 {
		log.Println("Warning: no provider configured, queries will return empty results")
	} else {
		log.Printf("Enabled providers: %v", enabled)
	}

	// 初始化二次分析
	analysisService := analyzer.New(cfg.Analysis)
	if analysisService.Enabled() {
		log.Printf("Analysis enabled (model: %s)", cfg.Analysis.Model)
	} else {
		log.Println("Analysis disabled")
	}

	// 初始化 OSS 归档（可选）
	var archiver service.ResultArchiver
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Fatalf("Failed to init OSS client: %v", err)
		}
		archiver = ossClient
		log.Println("OSS archive enabled")
	}

	// 初始化 Service
	queryService := service.NewQueryService(jobStore, registrySource, analysisService, broker, archiver, cfg.Export.ResultsDir)

	// 初始化 WebSocket Hub，并把事件桥接到任务房间
	wsHub := ws.NewHub()
	go bridgeEvents(broker, wsHub)
	log.Println("WebSocket hub started")

	// 初始化 Handler
	queryHandler := handler.NewQueryHandler(queryService)
	providersHandler := handler.NewProvidersHandler(registrySource, analysisService)
	websocketHandler := handler.NewWebSocketHandler(wsHub)

	// 初始化 Router
	router := api.NewRouter(queryHandler, providersHandler, websocketHandler, cfg)
	engine := router.Setup()

	// 过期任务回收（可选）
	if cfg.Retention.Enabled {
		cronService := cron.NewService(jobStore,
			time.Duration(cfg.Retention.MaxAgeHours)*time.Hour,
			time.Duration(cfg.Retention.SweepMinutes)*time.Minute)
		cronService.Start()
		defer cronService.Stop()
	}

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newRegistrySource 重读配置（含环境变量）构建注册表；重读失败时
// 退回启动时的凭证，保证查询不因坏配置中断
func newRegistrySource(fallback *config.Config) provider.Source {
	return func() *provider.Registry {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Printf("Failed to reload config, using startup credentials: %v", err)
			cfg = fallback
		}
		return provider.NewRegistry(&cfg.Providers)
	}
}

func newJobStore(cfg *config.Config) (store.JobStore, error) {
	switch cfg.Storage.Driver {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "sqlite":
		db, err := database.NewSQLite(cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return repository.NewJobRepository(db), nil
	case "mysql":
		db, err := database.NewMySQL(&cfg.Storage.Database)
		if err != nil {
			return nil, err
		}
		return repository.NewJobRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

func newBroker(cfg *config.Config) (pubsub.Broker, error) {
	if !cfg.Redis.Enabled {
		return pubsub.NewBus(), nil
	}
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		return nil, err
	}
	log.Println("Redis connected, using Redis event broker")
	return pubsub.NewRedisBroker(rdb), nil
}

// bridgeEvents 订阅全部任务事件，转发到对应的 WebSocket 房间
func bridgeEvents(broker pubsub.Broker, hub *ws.Hub) {
	events, cancel, err := broker.Subscribe(context.Background(), "")
	if err != nil {
		log.Fatalf("Failed to subscribe events: %v", err)
	}
	defer cancel()

	for ev := range events {
		if err := hub.SendToRoom(ev.JobID, ev); err != nil {
			log.Printf("Failed to forward %s event for job %s: %v", ev.Type, ev.JobID, err)
		}
	}
}
