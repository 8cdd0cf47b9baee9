package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/sergiudm/remind/internal/store"
)

var summaryCommand = cli.Command{
	Name:   "summary",
	Usage:  "print today's completed and open tasks",
	Action: summary,
}

func summary(ctx *cli.Context) error {
	s, err := openStores()
	if err != nil {
		return err
	}
	now := time.Now()

	completed, err := s.log.CompletedOn(now)
	if err != nil {
		return err
	}
	tasks, err := s.tasks.List()
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Printf("Summary for %s\n\n", now.Format("2006-01-02"))

	if len(completed) > 0 {
		color.Green("Completed today (%d):", len(completed))
		for _, task := range completed {
			fmt.Printf("  ✅ %s\n", task)
		}
		fmt.Println()
	}

	if len(tasks) > 0 {
		bold.Printf("Open tasks (%d):\n", len(tasks))
		urgent := color.New(color.FgRed, color.Bold)
		for _, task := range tasks {
			line := fmt.Sprintf("  • %s (p%d)", task.Description, task.Priority)
			if task.Priority > store.UrgentPriority {
				line = urgent.Sprint(line)
			}
			fmt.Println(line)
		}
	}

	if len(completed) == 0 && len(tasks) == 0 {
		fmt.Println("Nothing tracked today.")
	}
	return nil
}
