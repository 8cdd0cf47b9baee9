package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sergiudm/remind/internal/alert"
	"github.com/sergiudm/remind/internal/config"
	"github.com/sergiudm/remind/internal/engine"
	"github.com/sergiudm/remind/internal/report"
	"github.com/sergiudm/remind/internal/schedule"
	"github.com/sergiudm/remind/internal/store"
)

func main() {
	log.Println("remindd - personal schedule daemon")
	log.Println("==================================")

	// Load .env file (optional - won't error if missing)
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, using environment variables")
	} else {
		log.Println("[config] Loaded .env file")
	}

	configDir := os.Getenv("REMIND_CONFIG_DIR")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Cannot determine home directory: %v", err)
		}
		configDir = filepath.Join(home, ".remind")
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	weekly, err := schedule.LoadWeekly(cfg.OddWeeksPath(), cfg.EvenWeeksPath())
	if err != nil {
		log.Fatalf("Failed to load weekly schedules: %v", err)
	}

	// Discord delivery is opt-in; the default channel is the local
	// macOS dialog and sound.
	var channel alert.Channel
	var discord *alert.DiscordChannel
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		channelID := os.Getenv("DISCORD_CHANNEL_ID")
		if channelID == "" {
			log.Fatal("DISCORD_CHANNEL_ID required when DISCORD_TOKEN is set")
		}
		discord, err = alert.NewDiscordChannel(token, channelID)
		if err != nil {
			log.Fatalf("Failed to connect Discord: %v", err)
		}
		channel = discord
	} else {
		channel = alert.NewScriptChannel(cfg.SoundFile)
	}

	dispatcher := alert.NewDispatcher(channel, cfg.AlertInterval, cfg.MaxAlertDuration)
	actionLog := store.NewActionLog(cfg.TaskLogPath())
	habits := store.NewHabits(cfg.HabitsPath(), cfg.HabitRecordPath())

	runner := engine.New(engine.Deps{
		Config:     cfg,
		Weekly:     weekly,
		Dispatcher: dispatcher,
		Tasks:      store.NewTasks(cfg.TasksPath()),
		Log:        actionLog,
		Deadlines:  store.NewDeadlines(cfg.DeadlinesPath()),
		Habits:     habits,
		Reports:    report.NewGenerator(cfg.ReportsPath(), actionLog, habits),
	})
	for _, rule := range runner.DisabledRules() {
		log.Printf("[main] Disabled: %s", rule)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	log.Println("[main] Engine started. Press Ctrl+C to stop, SIGHUP to reload.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range sigChan {
		if sig != syscall.SIGHUP {
			break
		}
		// Reload keeps the running configuration when the new one
		// fails to load.
		newCfg, err := config.Load(configDir)
		if err != nil {
			log.Printf("[main] Reload failed, keeping current settings: %v", err)
			continue
		}
		newWeekly, err := schedule.LoadWeekly(newCfg.OddWeeksPath(), newCfg.EvenWeeksPath())
		if err != nil {
			log.Printf("[main] Reload failed, keeping current settings: %v", err)
			continue
		}
		runner.Reload(newCfg, newWeekly)
	}

	log.Println("[main] Shutting down...")
	cancel()
	<-done

	if discord != nil {
		if err := discord.Close(); err != nil {
			log.Printf("Warning: failed to close Discord session: %v", err)
		}
	}

	log.Println("[main] Goodbye!")
}
