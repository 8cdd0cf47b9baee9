package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/urfave/cli"

	"github.com/sergiudm/remind/internal/config"
	"github.com/sergiudm/remind/internal/store"
)

func main() {
	app := cli.NewApp()
	app.Name = "remind"
	app.Usage = "manage tasks, deadlines and schedules for the remind daemon"
	app.Commands = []cli.Command{
		taskCommand,
		ddlCommand,
		statusCommand,
		summaryCommand,
		reportCommand,
		checkCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configDir() (string, error) {
	godotenv.Load()
	if dir := os.Getenv("REMIND_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".remind"), nil
}

func loadConfig() (*config.Config, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}

type stores struct {
	cfg       *config.Config
	tasks     *store.Tasks
	log       *store.ActionLog
	deadlines *store.Deadlines
	habits    *store.Habits
}

func openStores() (*stores, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return &stores{
		cfg:       cfg,
		tasks:     store.NewTasks(cfg.TasksPath()),
		log:       store.NewActionLog(cfg.TaskLogPath()),
		deadlines: store.NewDeadlines(cfg.DeadlinesPath()),
		habits:    store.NewHabits(cfg.HabitsPath(), cfg.HabitRecordPath()),
	}, nil
}
