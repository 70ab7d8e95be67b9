package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/storerate/storerate/config"
	"github.com/storerate/storerate/database"
	"github.com/storerate/storerate/logger"
	"github.com/storerate/storerate/web"
	"github.com/storerate/storerate/web/policy"
	"github.com/storerate/storerate/web/service"
)

func initLogger(withFile bool) {
	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level, withFile)
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config: ", err)
	}
	return cfg
}

func openDB(cfg *config.Config) {
	if err := database.Open(cfg.Database()); err != nil {
		log.Fatal("open database: ", err)
	}
}

func closeDB() {
	if err := database.CloseDB(); err != nil {
		logger.Warning("close database:", err)
	}
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())
	initLogger(true)
	defer logger.CloseLogger()

	cfg := loadConfig()
	if cfg.EnsureJWTSecret() {
		logger.Warning("STORERATE_JWT_SECRET is not set; using a random secret, tokens will not survive a restart")
	}
	openDB(cfg)
	defer closeDB()

	server := web.NewServer(cfg)
	if err := server.Start(); err != nil {
		logger.Error("start server:", err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("received SIGHUP, restarting server")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer(cfg)
			if err := server.Start(); err != nil {
				logger.Error("restart server:", err)
				return
			}
		default:
			logger.Infof("received %v, shutting down", sig)
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDb() {
	initLogger(false)
	cfg := loadConfig()
	fmt.Println("Start migrating database...")
	openDB(cfg)
	defer closeDB()
	fmt.Println("Migration done!")
}

func createAdmin(name, email, password, address string) {
	initLogger(false)
	cfg := loadConfig()
	openDB(cfg)
	defer closeDB()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := service.NewUserService(service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL), policy.Policy{})
	user, created, err := users.EnsureAdmin(ctx, name, email, password, address)
	if err != nil {
		fmt.Println("create admin failed:", err)
		os.Exit(1)
	}
	if created {
		fmt.Printf("admin %s created with id %d\n", user.Email, user.Id)
	} else {
		fmt.Printf("user %s (id %d) promoted to admin and password reset\n", user.Email, user.Id)
	}
}

func showSetting() {
	cfg := loadConfig()
	redacted := cfg.Redacted()
	out, err := json.MarshalIndent(redacted, "", "  ")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("current settings as follows:")
	fmt.Println(string(out))
	fmt.Println("log level:", config.GetLogLevel())
	fmt.Println("log folder:", config.GetLogFolder())
	fmt.Println("database:", redacted.Database().GetDSN())
}

func main() {
	var rootCmd = &cobra.Command{
		Use:     config.GetName(),
		Short:   "Store rating API server",
		Version: config.GetVersion(),
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var adminCmd = &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}

	var adminCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create an admin, or promote an existing account with that email",
		Run: func(cmd *cobra.Command, args []string) {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			address, _ := cmd.Flags().GetString("address")
			createAdmin(name, email, password, address)
		},
	}

	adminCreateCmd.Flags().String("name", "", "admin display name (20 to 60 characters)")
	adminCreateCmd.Flags().String("email", "", "admin login email")
	adminCreateCmd.Flags().String("password", "", "admin password (at least 8 characters)")
	adminCreateCmd.Flags().String("address", "", "admin address")
	_ = adminCreateCmd.MarkFlagRequired("name")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd)

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Inspect settings",
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	settingCmd.AddCommand(showCmd)

	rootCmd.AddCommand(runCmd, migrateCmd, adminCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
