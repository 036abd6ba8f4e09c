package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anu-agent-go/internal/agent"
	"anu-agent-go/internal/api/handler"
	"anu-agent-go/internal/api/router"
	"anu-agent-go/internal/config"
	"anu-agent-go/internal/constants"
	appCoreLogger "anu-agent-go/internal/logger"
	"anu-agent-go/internal/parser"
	"anu-agent-go/internal/processor"
	"anu-agent-go/internal/storage"
	"anu-agent-go/internal/tracing"
	"anu-agent-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

var version = "1.0.0" //nolint:gochecknoglobals

// @title Anu Agent API
// @version 1.0
// @description Candidate document processing and interview synthesis service.
// @BasePath /api/v1
func main() {
	var (
		configPath string
		cvPDF      string
		dicePDF    string
		outputPath string
		name       string
		email      string
		pushDB     bool
		verbose    bool
	)
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file (searches common locations when empty)")
	pflag.StringVar(&cvPDF, "cv-pdf", "", "Path to a local CV PDF (enables one-shot CLI mode)")
	pflag.StringVar(&dicePDF, "dice-pdf", "", "Path to a local DICE assessment PDF")
	pflag.StringVarP(&outputPath, "output", "o", "", "Write the pipeline result JSON to this file (CLI mode)")
	pflag.StringVar(&name, "name", "", "Candidate name fallback (CLI mode)")
	pflag.StringVar(&email, "email", "", "Candidate email fallback (CLI mode)")
	pflag.BoolVar(&pushDB, "push-db", false, "Persist the result to MySQL (CLI mode)")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if verbose {
		cfg.Logger.Level = "debug"
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	if err := cfg.ValidateCredentials(); err != nil {
		glog.Fatalf("凭证校验失败: %v", err)
	}

	if cvPDF != "" || dicePDF != "" {
		if cvPDF == "" || dicePDF == "" {
			glog.Fatalf("CLI模式需要同时提供 --cv-pdf 和 --dice-pdf")
		}
		runLocalPipeline(cfg, cvPDF, dicePDF, name, email, outputPath, pushDB)
		return
	}

	runServer(cfg)
}

// runServer 启动HTTP服务，管道通过REST接口触发
func runServer(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitTracer(ctx, &cfg.Tracing, constants.ServiceName)
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := shutdownTracing(shutdownCtx); err != nil {
			glog.Warnf("链路追踪关闭失败: %v", err)
		}
	}()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	candidateProcessor, err := buildProcessor(ctx, cfg, storageManager)
	if err != nil {
		glog.Fatalf("初始化候选人处理器失败: %v", err)
	}
	glog.Info("候选人处理器初始化成功")

	candidateHandler := handler.NewCandidateHandler(cfg, storageManager, candidateProcessor)
	glog.Info("CandidateHandler初始化成功")

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, cfg, candidateHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// runLocalPipeline 对本地PDF执行一次完整管道并把结果打印到终端
func runLocalPipeline(cfg *config.Config, cvPDF, dicePDF, name, email, outputPath string, pushDB bool) {
	ctx := context.Background()

	var storageManager *storage.Storage
	if pushDB {
		var err error
		storageManager, err = storage.NewStorage(ctx, cfg)
		if err != nil {
			glog.Fatalf("初始化存储失败: %v", err)
		}
		defer storageManager.Close()
	}

	cfg.Pipeline.PersistByDefault = pushDB
	candidateProcessor, err := buildProcessor(ctx, cfg, storageManager)
	if err != nil {
		glog.Fatalf("初始化候选人处理器失败: %v", err)
	}

	result := candidateProcessor.ProcessCandidate(ctx, processor.ProcessRequest{
		Name:        name,
		Email:       email,
		CVLocator:   cvPDF,
		DICELocator: dicePDF,
	})

	profileJSON, err := json.MarshalIndent(result.Profile, "", "  ")
	if err != nil {
		glog.Fatalf("序列化候选人画像失败: %v", err)
	}

	fmt.Println("=== CANDIDATE PROFILE ===")
	fmt.Println(string(profileJSON))
	fmt.Println()
	fmt.Println("=== GENERATED INTERVIEW CONVERSATION ===")
	fmt.Println(parser.FormatChatForDisplay(result.Interview))
	fmt.Println()
	fmt.Println("=== MEMORIES ===")
	fmt.Println(parser.FormatMemoriesForDisplay(result.Interview))
	fmt.Println()
	fmt.Println("=== SUMMARY ===")
	fmt.Println(result.SummaryNotes)

	if result.Error != "" {
		fmt.Println()
		fmt.Println("=== ERROR ===")
		fmt.Println(result.Error)
	}

	if outputPath != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			glog.Fatalf("序列化管道结果失败: %v", err)
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			glog.Fatalf("写入结果文件失败: %v", err)
		}
		glog.Infof("管道结果已保存到 %s", outputPath)
	}

	if result.Status != types.StatusSuccess {
		os.Exit(1)
	}
}

// buildProcessor 组装管道组件。storageManager允许为nil，此时归档、缓存和事件旁路全部跳过。
func buildProcessor(ctx context.Context, cfg *config.Config, storageManager *storage.Storage) (*processor.CandidateProcessor, error) {
	pdfExtractor, err := parser.NewEinoPDFTextExtractor(ctx,
		parser.WithEinoLogger(log.New(os.Stderr, "[EinoPDFMain] ", log.LstdFlags)))
	if err != nil {
		return nil, fmt.Errorf("创建Eino PDF提取器失败: %w", err)
	}

	// 画像与面试可以配置各自的任务模型
	profileModel, err := agent.NewAliyunQwenChatModel(cfg.Aliyun.APIKey, cfg.TaskModel("profile"), cfg.Aliyun.APIURL)
	if err != nil {
		return nil, fmt.Errorf("初始化画像提取模型失败: %w", err)
	}
	interviewModel, err := agent.NewAliyunQwenChatModel(cfg.Aliyun.APIKey, cfg.TaskModel("interview"), cfg.Aliyun.APIURL)
	if err != nil {
		return nil, fmt.Errorf("初始化面试合成模型失败: %w", err)
	}

	var profileLogger, interviewLogger *log.Logger
	if cfg.Logger.Level == "debug" {
		profileLogger = log.New(os.Stderr, "[ProfileMain] ", log.LstdFlags|log.Lshortfile)
		interviewLogger = log.New(os.Stderr, "[InterviewMain] ", log.LstdFlags|log.Lshortfile)
	} else {
		profileLogger = log.New(io.Discard, "", 0)
		interviewLogger = log.New(io.Discard, "", 0)
	}

	llmTimeout := time.Duration(cfg.Pipeline.LLMTimeoutSeconds) * time.Second

	profileExtractor := parser.NewLLMProfileExtractor(profileModel, profileLogger,
		parser.WithProfileTemperature(cfg.Pipeline.ProfileTemperature),
		parser.WithProfileTimeout(llmTimeout))
	interviewGenerator := parser.NewLLMInterviewGenerator(interviewModel, interviewLogger,
		parser.WithInterviewTemperature(cfg.Pipeline.InterviewTemperature),
		parser.WithInterviewTimeout(llmTimeout))

	components := &processor.Components{
		DocumentExtractor:  pdfExtractor,
		ProfileExtractor:   profileExtractor,
		InterviewGenerator: interviewGenerator,
	}
	if storageManager != nil {
		if storageManager.MySQL != nil {
			components.Sink = storageManager.MySQL
		}
		if storageManager.Redis != nil {
			components.Cache = storageManager.Redis
		}
		if storageManager.RabbitMQ != nil {
			components.Publisher = storageManager.RabbitMQ
		}
		if storageManager.MinIO != nil {
			components.Documents = storageManager.MinIO
		}
	}

	processorLogger := log.New(appCoreLogger.Logger, "[ProcessorMain] ", log.LstdFlags|log.Lshortfile)
	settings := &processor.Settings{
		PersistByDefault: cfg.Pipeline.PersistByDefault,
		Debug:            cfg.Logger.Level == "debug",
		Logger:           processorLogger,
	}

	return processor.NewCandidateProcessor(components, settings), nil
}

func initLogger(cfg *config.Config) {
	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.Level == "debug",
	})

	appCoreLogger.Logger = appCoreLogger.Logger.With().
		Str("app", constants.ServiceName).
		Str("version", version).
		Logger()

	// Hertz 的日志统一走zerolog适配器
	hertzCompatibleLogger := hertzadapter.From(appCoreLogger.Logger)
	glog.SetLogger(hertzCompatibleLogger)
	if cfg.Logger.Level == "debug" {
		glog.SetLevel(glog.LevelDebug)
	}
}
