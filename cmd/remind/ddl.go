package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/urfave/cli"
)

var ddlCommand = cli.Command{
	Name:  "ddl",
	Usage: "manage deadlines",
	Subcommands: []cli.Command{
		{
			Name:      "add",
			Usage:     "add a deadline on a month.day date, e.g. 6.15",
			ArgsUsage: "<event> <month.day>",
			Action:    ddlAdd,
		},
		{
			Name:      "rm",
			Usage:     "remove deadlines",
			ArgsUsage: "<event>...",
			Action:    ddlRemove,
		},
		{
			Name:    "ls",
			Aliases: []string{"list"},
			Usage:   "list deadlines",
			Action:  ddlList,
		},
	},
}

func ddlAdd(ctx *cli.Context) error {
	event, spec := ctx.Args().First(), ctx.Args().Get(1)
	if event == "" || spec == "" {
		return cli.NewExitError("usage: remind ddl add <event> <month.day>", 1)
	}

	s, err := openStores()
	if err != nil {
		return err
	}
	d, err := s.deadlines.Add(event, spec, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Deadline %q set for %s\n", d.Event, d.Deadline)
	return nil
}

func ddlRemove(ctx *cli.Context) error {
	if len(ctx.Args()) == 0 {
		return cli.NewExitError("usage: remind ddl rm <event>...", 1)
	}

	s, err := openStores()
	if err != nil {
		return err
	}
	if err := s.deadlines.Remove(ctx.Args()...); err != nil {
		return err
	}
	for _, event := range ctx.Args() {
		fmt.Printf("Removed deadline %q\n", event)
	}
	return nil
}

func ddlList(ctx *cli.Context) error {
	s, err := openStores()
	if err != nil {
		return err
	}
	all, err := s.deadlines.List()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Println("No deadlines.")
		return nil
	}

	now := time.Now()
	urgentSet := make(map[string]int)
	urgent, err := s.deadlines.Urgent(now)
	if err != nil {
		return err
	}
	for _, d := range urgent {
		urgentSet[d.Event] = d.DaysLeft
	}

	red := color.New(color.FgRed, color.Bold)
	table := uitable.New()
	table.AddRow("EVENT", "DATE", "DAYS LEFT")
	for _, d := range all {
		left := ""
		event := d.Event
		if days, ok := urgentSet[d.Event]; ok {
			event = red.Sprint(event)
			if days < 0 {
				left = red.Sprintf("overdue by %d", -days)
			} else {
				left = red.Sprint(strconv.Itoa(days))
			}
		}
		table.AddRow(event, d.Deadline, left)
	}
	fmt.Println(table)
	return nil
}
