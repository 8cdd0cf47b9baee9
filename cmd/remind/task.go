package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/urfave/cli"

	"github.com/sergiudm/remind/internal/store"
)

const defaultPriority = 5

var taskCommand = cli.Command{
	Name:  "task",
	Usage: "manage the task list",
	Subcommands: []cli.Command{
		{
			Name:      "add",
			Usage:     "add a task, or change the priority of an existing one",
			ArgsUsage: "<description> [priority]",
			Action:    taskAdd,
		},
		{
			Name:      "done",
			Usage:     "mark tasks completed and drop them from the list",
			ArgsUsage: "<number|description>...",
			Action:    taskDone,
		},
		{
			Name:      "rm",
			Usage:     "drop tasks from the list (counts as completed in reports)",
			ArgsUsage: "<number|description>...",
			Action:    taskRemove,
		},
		{
			Name:    "ls",
			Aliases: []string{"list"},
			Usage:   "list tasks",
			Action:  taskList,
		},
	},
}

func taskAdd(ctx *cli.Context) error {
	description := ctx.Args().First()
	if description == "" {
		return cli.NewExitError("usage: remind task add <description> [priority]", 1)
	}
	priority := defaultPriority
	if arg := ctx.Args().Get(1); arg != "" {
		p, err := strconv.Atoi(arg)
		if err != nil || p < 0 {
			return cli.NewExitError(fmt.Sprintf("invalid priority %q", arg), 1)
		}
		priority = p
	}

	s, err := openStores()
	if err != nil {
		return err
	}
	updated, old, err := s.tasks.Add(description, priority)
	if err != nil {
		return err
	}
	if updated {
		if err := s.log.Append(time.Now(), store.ActionUpdated, description, map[string]any{"priority": priority, "old_priority": old}); err != nil {
			return err
		}
		fmt.Printf("Updated %q (priority %d → %d)\n", description, old, priority)
		return nil
	}
	if err := s.log.Append(time.Now(), store.ActionAdded, description, map[string]any{"priority": priority}); err != nil {
		return err
	}
	fmt.Printf("Added %q (priority %d)\n", description, priority)
	return nil
}

func taskDone(ctx *cli.Context) error {
	return dropTasks(ctx, "done", "Completed %q 🎉\n")
}

func taskRemove(ctx *cli.Context) error {
	return dropTasks(ctx, "rm", "Removed %q\n")
}

// dropTasks deletes the referenced tasks one by one. References are
// resolved against the listing as it stands after each deletion, so
// removing by number twice drops the top two tasks.
func dropTasks(ctx *cli.Context, verb, format string) error {
	if len(ctx.Args()) == 0 {
		return cli.NewExitError(fmt.Sprintf("usage: remind task %s <number|description>...", verb), 1)
	}

	s, err := openStores()
	if err != nil {
		return err
	}
	for _, ref := range ctx.Args() {
		removed, err := s.tasks.Remove(ref)
		if err != nil {
			return err
		}
		if err := s.log.Append(time.Now(), store.ActionDeleted, removed.Description, map[string]any{"priority": removed.Priority}); err != nil {
			return err
		}
		fmt.Printf(format, removed.Description)
	}
	return nil
}

func taskList(ctx *cli.Context) error {
	s, err := openStores()
	if err != nil {
		return err
	}
	tasks, err := s.tasks.List()
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}

	urgent := color.New(color.FgRed, color.Bold)
	table := uitable.New()
	table.AddRow("#", "PRIORITY", "DESCRIPTION")
	for i, task := range tasks {
		desc := task.Description
		if task.Priority > store.UrgentPriority {
			desc = urgent.Sprint(desc)
		}
		table.AddRow(strconv.Itoa(i+1), strconv.Itoa(task.Priority), desc)
	}
	fmt.Println(table)
	return nil
}
