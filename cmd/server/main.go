package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/mentorlabs/mentor/internal/actions"
	"github.com/mentorlabs/mentor/internal/agent"
	"github.com/mentorlabs/mentor/internal/auth"
	"github.com/mentorlabs/mentor/internal/backup"
	"github.com/mentorlabs/mentor/internal/cleanup"
	"github.com/mentorlabs/mentor/internal/config"
	"github.com/mentorlabs/mentor/internal/logger"
	"github.com/mentorlabs/mentor/internal/memory"
	"github.com/mentorlabs/mentor/internal/model"
	"github.com/mentorlabs/mentor/internal/schedule"
	"github.com/mentorlabs/mentor/internal/server"
	"github.com/mentorlabs/mentor/internal/store"
)

// Version is set at build time via -ldflags "-X main.Version=v1.0.0"
var Version = "dev"

func main() {
	// Check for subcommands before parsing flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "init":
			cmdInit()
			return
		case "user":
			cmdUser(os.Args[2:])
			return
		case "token":
			cmdToken(os.Args[2:])
			return
		case "--version", "-v":
			fmt.Printf("mentor %s\n", Version)
			return
		case "--help", "-h", "help":
			printUsage()
			return
		}
	}

	// Default: run server
	runServer()
}

func printUsage() {
	fmt.Printf(`Mentor %s - Autonomous Learning Agent

Usage: mentor [command] [options]

Commands:
  (default)    Start the API server
  init         Initialize the mentor directory structure
  user         Manage learner accounts
  token        Manage authentication tokens

Server Options:
  --dir <path>       Mentor home directory

Config Precedence (for server):
  1. --dir flag
  2. MENTOR_HOME env var
  3. ./.mentor (if initialized in current directory)
  4. ~/.mentor (default)

Environment:
  MENTOR_API_KEY     Model API key (overrides config file)

Examples:
  mentor                             Start the server (auto-detect config)
  mentor --dir /path/to/mentor       Start with a specific home directory
  mentor init                        Set up ~/.mentor
  mentor user create --username ana  Create a learner and their first token
  mentor token list --user <id>      List a learner's tokens
`, Version)
}

func runServer() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	dirFlag := flag.String("dir", "", "Mentor home directory (default: ~/.mentor)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mentor %s\n", Version)
		os.Exit(0)
	}

	mentorDir := resolveMentorDir(*dirFlag)
	configDir := filepath.Join(mentorDir, "config")

	cfg, err := config.Load(configDir)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	dataDir := resolvePath(mentorDir, cfg.Server.DataDir)
	logDir := resolvePath(mentorDir, cfg.Server.LogDir)

	if err := logger.Init(logDir); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Close() }()
	if err := logger.InitSlog(logDir, cfg.Server.LogJSON); err != nil {
		log.Fatalf("Failed to initialize structured logger: %v", err)
	}
	defer func() { _ = logger.CloseSlog() }()

	logger.Println("🎓 Mentor - Autonomous Learning Agent")
	logger.Println("")

	if !cfg.HasAPIKey() {
		logger.Println("⚠️  WARNING: No model API key configured")
		logger.Println("   Conversations will fail until you set MENTOR_API_KEY or model.api_key")
	}

	dataStore, err := store.New(dataDir)
	if err != nil {
		logger.Fatalf("Failed to initialize data store: %v", err)
	}
	defer func() { _ = dataStore.Close() }()
	logger.Printf("💾 Data database: %s/mentor.db\n", dataDir)

	authStore, err := auth.NewStore(dataDir)
	if err != nil {
		logger.Fatalf("Failed to initialize auth store: %v", err)
	}
	defer func() { _ = authStore.Close() }()
	logger.Printf("🔐 Auth database: %s/auth.db\n", dataDir)

	scheduleStore, err := schedule.NewStore(dataDir)
	if err != nil {
		logger.Fatalf("Failed to initialize reminder store: %v", err)
	}
	defer func() { _ = scheduleStore.Close() }()
	logger.Printf("📅 Reminder database: %s/reminders.db\n", dataDir)

	provider := model.NewOpenAI(cfg.Model.APIKey, cfg.Model.BaseURL)
	logger.Printf("🤖 Chat model: %s (planner: %s)\n", cfg.Model.ChatModel, cfg.Model.PlannerModel)

	registry := agent.NewRegistry()
	deps := actions.NewDeps(dataStore, scheduleStore, provider, cfg.Model.PlannerModel)
	if err := deps.RegisterAll(registry); err != nil {
		logger.Fatalf("Failed to register actions: %v", err)
	}

	orchestrator := agent.NewOrchestrator(provider, registry, memory.NewNoop(), cfg.Model.ChatModel)
	contexts := agent.NewContextBuilder(dataStore, cfg.Limits.SessionHistory, cfg.Limits.CrossSessionHistory)
	limiter := auth.NewRateLimiter(cfg.Limits.RateRPS, cfg.Limits.RateBurst)

	srv := server.New(dataStore, scheduleStore, orchestrator, contexts, authStore, limiter)

	// Due reminders become notifications
	runner := schedule.NewRunner(scheduleStore, func(ctx context.Context, reminder *schedule.Reminder) error {
		_, err := dataStore.CreateNotification(reminder.UserID, reminder.Title, reminder.Message, store.NotifyReminder, nil)
		return err
	})
	runner.Start()

	var cleaner *cleanup.Cleaner
	if cfg.Cleanup.Enabled {
		cleaner = cleanup.New(dataStore, cleanup.Config{
			DataDir:          dataDir,
			Interval:         time.Duration(cfg.Cleanup.IntervalMinutes) * time.Minute,
			NotifyRetention:  time.Duration(cfg.Cleanup.NotificationDays) * 24 * time.Hour,
			SessionRetention: time.Duration(cfg.Cleanup.EmptySessionHours) * time.Hour,
			DiskWarnPercent:  float64(cfg.Cleanup.DiskWarnPercent),
			DiskErrorPercent: float64(cfg.Cleanup.DiskErrorPercent),
		})
		cleaner.Start()
	}

	var backupMgr *backup.Manager
	if cfg.Backup.Enabled {
		backupMgr, err = backup.New(backup.Config{
			DataDir:   dataDir,
			BackupDir: resolvePath(mentorDir, cfg.Backup.Directory),
			Retention: cfg.Backup.Retention,
			Interval:  time.Duration(cfg.Backup.IntervalHours) * time.Hour,
		})
		if err != nil {
			logger.Fatalf("Failed to initialize backup manager: %v", err)
		}
		backupMgr.Start()
	}

	logger.Println("🚀 Starting Mentor API server...")
	logger.Printf("📡 Server address: http://localhost%s\n", cfg.Server.Address)
	logger.Println("")

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Serve(cfg.Server.Address)
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdownChan:
		logger.Printf("⚠️  Received signal %v, initiating graceful shutdown...", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		logger.Println("   Stopping HTTP server...")
		if err := srv.Shutdown(ctx); err != nil {
			logger.Printf("   HTTP shutdown error: %v", err)
		}

		logger.Println("   Stopping reminder runner...")
		runner.Stop()

		if cleaner != nil {
			logger.Println("   Stopping cleanup...")
			cleaner.Stop()
		}

		if backupMgr != nil {
			logger.Println("   Stopping backups...")
			backupMgr.Stop()
		}

		logger.Println("✅ Shutdown complete")
	}
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dirFlag := fs.String("dir", "", "Directory to initialize (default: ~/.mentor)")
	_ = fs.Parse(os.Args[2:])

	var mentorDir string
	if *dirFlag != "" {
		absDir, err := filepath.Abs(*dirFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid directory: %v\n", err)
			os.Exit(1)
		}
		mentorDir = absDir
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: could not determine home directory: %v\n", err)
			os.Exit(1)
		}
		mentorDir = filepath.Join(homeDir, ".mentor")
	}

	configDir := filepath.Join(mentorDir, "config")
	dataDir := filepath.Join(mentorDir, "data")

	configFile := filepath.Join(configDir, "mentor.jsonc")
	if _, err := os.Stat(configFile); err == nil {
		fmt.Printf("⚠️  %s is already initialized.\n", mentorDir)
		fmt.Print("Overwrite? [y/N]: ")
		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return
		}
	}

	fmt.Println("🎓 Initializing Mentor")
	fmt.Println("")

	dirs := []string{
		configDir,
		dataDir,
		filepath.Join(mentorDir, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", dir, err)
			os.Exit(1)
		}
		fmt.Printf("   Created %s\n", dir)
	}

	defaultConfig := `{
  // Mentor Configuration

  "server": {
    "address": ":8000",
    "data_dir": "data",
    "log_dir": "logs",
    "log_json": false
  },

  "model": {
    // Set via MENTOR_API_KEY instead of committing a key here
    "api_key": "",
    "base_url": "https://api.mistral.ai/v1",
    "chat_model": "mistral-large-latest",
    "planner_model": "mistral-small-latest"
  },

  "limits": {
    "session_history": 10,
    "cross_session_history": 20,
    "rate_rps": 10,
    "rate_burst": 20
  },

  "cleanup": {
    "enabled": true,
    "interval_minutes": 60,
    "notification_days": 30,
    "empty_session_hours": 24,
    "disk_warn_percent": 80,
    "disk_error_percent": 90
  },

  "backup": {
    "enabled": false,
    "directory": "backups",
    "retention": 7,
    "interval_hours": 24
  }
}
`
	if err := os.WriteFile(configFile, []byte(defaultConfig), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating mentor.jsonc: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("   Created %s\n", configFile)

	fmt.Println("")
	fmt.Println("✅ Mentor initialized!")
	fmt.Println("")
	fmt.Println("Next steps:")
	fmt.Println("   1. Export MENTOR_API_KEY with your model API key")
	fmt.Println("   2. Run 'mentor user create --username <name>' to create a learner")
	fmt.Println("   3. Run 'mentor' to start the server")
}

// cmdUser handles the 'user' subcommand for managing learner accounts
func cmdUser(args []string) {
	if len(args) < 1 {
		printUserUsage()
		os.Exit(1)
	}

	mentorDir := resolveMentorDir("")
	dataDir := filepath.Join(mentorDir, "data")

	dataStore, err := store.New(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing data store: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = dataStore.Close() }()

	switch args[0] {
	case "create":
		userCreate(dataStore, dataDir, args[1:])
	case "help", "-h", "--help":
		printUserUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown user command: %s\n", args[0])
		printUserUsage()
		os.Exit(1)
	}
}

func printUserUsage() {
	fmt.Println(`User Management

Usage: mentor user <command> [options]

Commands:
  create    Create a learner account and its first API token
  help      Show this help

Examples:
  mentor user create --username ana --email ana@example.com --name "Ana Diaz"`)
}

func userCreate(dataStore *store.Store, dataDir string, args []string) {
	fs := flag.NewFlagSet("user create", flag.ExitOnError)
	username := fs.String("username", "", "Unique username (required)")
	email := fs.String("email", "", "Email address")
	name := fs.String("name", "", "Full name")
	_ = fs.Parse(args)

	if *username == "" {
		fmt.Fprintln(os.Stderr, "Error: --username is required")
		fs.PrintDefaults()
		os.Exit(1)
	}

	user, err := dataStore.CreateUser(*username, *email, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	authStore, err := auth.NewStore(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing auth store: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = authStore.Close() }()

	_, secret, err := authStore.CreateToken(user.ID, "initial", nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("User created successfully!")
	fmt.Println()
	fmt.Printf("User ID:  %s\n", user.ID)
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Println()
	fmt.Println("API token (save this - it cannot be retrieved later):")
	fmt.Printf("   %s\n", secret)
}

// cmdToken handles the 'token' subcommand for managing authentication tokens
func cmdToken(args []string) {
	if len(args) < 1 {
		printTokenUsage()
		os.Exit(1)
	}

	mentorDir := resolveMentorDir("")
	dataDir := filepath.Join(mentorDir, "data")

	authStore, err := auth.NewStore(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing auth store: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = authStore.Close() }()

	switch args[0] {
	case "create":
		tokenCreate(authStore, args[1:])
	case "list":
		tokenList(authStore, args[1:])
	case "revoke":
		tokenRevoke(authStore, args[1:])
	case "help", "-h", "--help":
		printTokenUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown token command: %s\n", args[0])
		printTokenUsage()
		os.Exit(1)
	}
}

func printTokenUsage() {
	fmt.Println(`Token Management

Usage: mentor token <command> [options]

Commands:
  create    Create a new API token for a user
  list      List a user's tokens
  revoke    Revoke a token
  help      Show this help

Examples:
  mentor token create --user <user_id> --name "Phone"
  mentor token list --user <user_id>
  mentor token revoke mnt_xxxx...`)
}

func tokenCreate(authStore *auth.Store, args []string) {
	fs := flag.NewFlagSet("token create", flag.ExitOnError)
	userID := fs.String("user", "", "User ID the token belongs to (required)")
	name := fs.String("name", "", "Human-readable token name (required)")
	_ = fs.Parse(args)

	if *userID == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "Error: --user and --name are required")
		fs.PrintDefaults()
		os.Exit(1)
	}

	token, secret, err := authStore.CreateToken(*userID, *name, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Token created successfully!")
	fmt.Println()
	fmt.Printf("Token:  %s\n", secret)
	fmt.Printf("Name:   %s\n", token.Name)
	fmt.Printf("User:   %s\n", token.UserID)
	fmt.Println()
	fmt.Println("IMPORTANT: Save this token now. It cannot be retrieved later.")
}

func tokenList(authStore *auth.Store, args []string) {
	fs := flag.NewFlagSet("token list", flag.ExitOnError)
	userID := fs.String("user", "", "User ID to list tokens for (required)")
	_ = fs.Parse(args)

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "Error: --user is required")
		os.Exit(1)
	}

	tokens, err := authStore.ListTokens(*userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing tokens: %v\n", err)
		os.Exit(1)
	}

	if len(tokens) == 0 {
		fmt.Println("No tokens found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCREATED\tLAST USED")
	_, _ = fmt.Fprintln(w, "--\t----\t-------\t---------")

	for _, t := range tokens {
		lastUsed := "never"
		if t.LastUsedAt != nil {
			lastUsed = t.LastUsedAt.Format("2006-01-02 15:04")
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			maskTokenID(t.ID), t.Name, t.CreatedAt.Format("2006-01-02 15:04"), lastUsed)
	}
	_ = w.Flush()
}

func tokenRevoke(authStore *auth.Store, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: token ID required")
		fmt.Fprintln(os.Stderr, "Usage: mentor token revoke <token_id>")
		os.Exit(1)
	}

	tokenID := args[0]
	if err := authStore.RevokeToken(tokenID); err != nil {
		fmt.Fprintf(os.Stderr, "Error revoking token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Token %s revoked successfully.\n", maskTokenID(tokenID))
}

func maskTokenID(tokenID string) string {
	if len(tokenID) <= 12 {
		return "***"
	}
	return tokenID[:8] + "..." + tokenID[len(tokenID)-4:]
}

// resolveMentorDir determines the mentor home directory with precedence:
// 1. Explicit flag (if provided)
// 2. MENTOR_HOME env var
// 3. ./.mentor (current directory, if initialized)
// 4. ~/.mentor (default)
func resolveMentorDir(flagDir string) string {
	if flagDir != "" {
		absDir, err := filepath.Abs(flagDir)
		if err != nil {
			log.Fatalf("Invalid directory: %v", err)
		}
		return absDir
	}

	if envDir := os.Getenv("MENTOR_HOME"); envDir != "" {
		absDir, err := filepath.Abs(envDir)
		if err != nil {
			log.Fatalf("Invalid MENTOR_HOME: %v", err)
		}
		return absDir
	}

	cwd, err := os.Getwd()
	if err == nil {
		localDir := filepath.Join(cwd, ".mentor")
		configFile := filepath.Join(localDir, "config", "mentor.jsonc")
		if _, err := os.Stat(configFile); err == nil {
			return localDir
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}
	return filepath.Join(homeDir, ".mentor")
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
