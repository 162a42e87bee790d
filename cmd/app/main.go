package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"packorder/cmd"
	httpserver "packorder/internal/adapters/in/http"
	"packorder/internal/adapters/out/postgres/approvalrepo"
	"packorder/internal/adapters/out/postgres/historyrepo"
	"packorder/internal/adapters/out/postgres/orderrepo"
	"packorder/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()

	gormDB := mustConnectDB(configs)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	app, err := cmd.NewCompositionRoot(configs, gormDB)
	if err != nil {
		log.Fatalf("Failed to build composition root: %v", err)
	}

	executeTransitionHandler, err := app.CreateExecuteTransitionCommandHandler()
	if err != nil {
		log.Fatalf("Failed to build transition handler: %v", err)
	}
	rollbackHandler, err := app.CreateRollbackOrderCommandHandler()
	if err != nil {
		log.Fatalf("Failed to build rollback handler: %v", err)
	}
	recoveryHandler, err := app.CreateRunRecoveryCommandHandler()
	if err != nil {
		log.Fatalf("Failed to build recovery handler: %v", err)
	}

	server := httpserver.NewServer(
		app.CreateCreateOrderCommandHandler(),
		executeTransitionHandler,
		rollbackHandler,
		app.CreateDecideApprovalCommandHandler(),
		recoveryHandler,
		app.CreateGetActiveOrdersQueryHandler(),
		app.CreateGetPendingApprovalsQueryHandler(),
		app.CreateGetStateHistoryQueryHandler(),
		app.CreateGetStateTimelineQueryHandler(),
		app.CreateGetStateChangeReportQueryHandler(),
	)

	jobManager := jobs.NewJobManager(
		app.CreateGetActiveOrdersQueryHandler(),
		recoveryHandler,
		configs.SweepSchedule,
		logger,
	)
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(server, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:          goDotEnvVariable("HTTP_PORT"),
		DBHost:            goDotEnvVariable("DB_HOST"),
		DBPort:            goDotEnvVariable("DB_PORT"),
		DBUser:            goDotEnvVariable("DB_USER"),
		DBPassword:        goDotEnvVariable("DB_PASSWORD"),
		DBName:            goDotEnvVariable("DB_NAME"),
		DBSslMode:         goDotEnvVariable("DB_SSLMODE"),
		ApprovalApprovers: splitCSV(goDotEnvVariable("APPROVAL_APPROVERS")),
		ApprovalTTL:       hoursVariable("APPROVAL_TTL_HOURS"),
		StuckAfter:        hoursVariable("STUCK_AFTER_HOURS"),
		SweepSchedule:     goDotEnvVariable("SWEEP_SCHEDULE"),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func hoursVariable(key string) time.Duration {
	hours, err := strconv.Atoi(goDotEnvVariable(key))
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return time.Duration(hours) * time.Hour
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func mustConnectDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&approvalrepo.ApprovalRequestDTO{},
		&historyrepo.HistoryEntryDTO{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database schema: %v", err)
	}

	return gormDB
}

func startWebServer(server *httpserver.Server, port string) {
	e := echo.New()
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
