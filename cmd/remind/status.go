package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/urfave/cli"

	"github.com/sergiudm/remind/internal/config"
	"github.com/sergiudm/remind/internal/schedule"
	"github.com/sergiudm/remind/internal/timeutil"
)

var statusCommand = cli.Command{
	Name:  "status",
	Usage: "show today's effective schedule",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "also show configured time blocks and points",
		},
	},
	Action: status,
}

func status(ctx *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	weekly, err := schedule.LoadWeekly(cfg.OddWeeksPath(), cfg.EvenWeeksPath())
	if err != nil {
		return err
	}

	now := time.Now()
	parity := timeutil.WeekParity(now)
	bold := color.New(color.Bold)
	bold.Printf("%s (%s, %s week)\n\n", timeutil.DateOf(now), timeutil.WeekdayName(now), parity)

	if cfg.ShouldSkip(now) {
		color.Yellow("Today is a skip day, the schedule is suppressed.")
		return nil
	}

	today := weekly.Today(cfg, now)
	if len(today) == 0 {
		fmt.Println("Nothing scheduled today.")
	} else {
		times := make([]string, 0, len(today))
		for at := range today {
			times = append(times, at)
		}
		sort.Strings(times)

		nowStr := timeutil.ClockOf(now)
		table := uitable.New()
		table.AddRow("TIME", "ENTRY")
		for _, at := range times {
			label := describeEntry(today[at], cfg)
			if at < nowStr {
				label = color.New(color.Faint).Sprint(label)
			}
			table.AddRow(at, label)
		}
		fmt.Println(table)
	}

	if !ctx.Bool("verbose") {
		return nil
	}

	fmt.Println()
	bold.Println("Time blocks")
	blocks := make([]string, 0, len(cfg.Blocks))
	for name := range cfg.Blocks {
		blocks = append(blocks, name)
	}
	sort.Strings(blocks)
	for _, name := range blocks {
		fmt.Printf("  %s: %dmin\n", name, cfg.Blocks[name])
	}

	bold.Println("Time points")
	points := make([]string, 0, len(cfg.Points))
	for name := range cfg.Points {
		points = append(points, name)
	}
	sort.Strings(points)
	for _, name := range points {
		fmt.Printf("  %s: %s\n", name, cfg.Points[name])
	}
	return nil
}

func describeEntry(e schedule.Entry, cfg *config.Config) string {
	switch e.Kind {
	case schedule.KindBlockRef:
		if minutes, ok := cfg.BlockMinutes(e.Block); ok {
			return fmt.Sprintf("%s (%dmin)", e.Title, minutes)
		}
		return color.RedString("%s (unknown block %q)", e.Title, e.Block)
	default:
		return e.Text
	}
}
