package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/sergiudm/remind/internal/recurrence"
	"github.com/sergiudm/remind/internal/report"
)

var reportCommand = cli.Command{
	Name:  "report",
	Usage: "generate any missing weekly and monthly reports",
	Flags: []cli.Flag{
		cli.BoolFlag{Name: "weekly", Usage: "only the weekly report"},
		cli.BoolFlag{Name: "monthly", Usage: "only the monthly report"},
	},
	Action: generateReports,
}

func generateReports(ctx *cli.Context) error {
	s, err := openStores()
	if err != nil {
		return err
	}
	gen := report.NewGenerator(s.cfg.ReportsPath(), s.log, s.habits)
	now := time.Now()
	generated := 0

	wantWeekly := ctx.Bool("weekly") || !ctx.Bool("monthly")
	wantMonthly := ctx.Bool("monthly") || !ctx.Bool("weekly")

	if spec := s.cfg.WeeklyReviewSpec; wantWeekly && spec != "" {
		rule, err := recurrence.ParseWeekly("weekly_review", spec)
		if err != nil {
			return err
		}
		path, created, err := gen.GenerateWeekly(rule.LastOccurrence(now))
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("Generated %s\n", path)
			generated++
		}
	}

	if spec := s.cfg.MonthlyReviewSpec; wantMonthly && spec != "" {
		rule, err := recurrence.ParseMonthly("monthly_review", spec)
		if err != nil {
			return err
		}
		path, created, err := gen.GenerateMonthly(rule.LastOccurrence(now))
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("Generated %s\n", path)
			generated++
		}
	}

	if generated == 0 {
		fmt.Println("All reports are up to date.")
	}
	return nil
}
