package cli

import (
	"fmt"

	"github.com/nadia/taskwise/internal/store"
	"github.com/spf13/cobra"
)

var (
	tasksUser        string
	tasksShowDone    bool
	tasksDescription string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect and edit the task list directly",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTasksList,
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksAdd,
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <task-id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksDone,
}

var tasksUndoneCmd = &cobra.Command{
	Use:   "undone <task-id>",
	Short: "Mark a completed task as open again",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksUndone,
}

var tasksRmCmd = &cobra.Command{
	Use:   "rm <task-id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksRm,
}

func init() {
	tasksCmd.PersistentFlags().StringVar(&tasksUser, "user", "", "acting user id (required)")
	tasksCmd.MarkPersistentFlagRequired("user")

	tasksListCmd.Flags().BoolVar(&tasksShowDone, "all", false, "include completed tasks")
	tasksAddCmd.Flags().StringVar(&tasksDescription, "description", "", "task description")

	tasksCmd.AddCommand(tasksListCmd, tasksAddCmd, tasksDoneCmd, tasksUndoneCmd, tasksRmCmd)
	rootCmd.AddCommand(tasksCmd)
}

func runTasksList(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	tasks, err := app.store.Tasks().ListByUser(cmd.Context(), tasksUser, tasksShowDone)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
		return nil
	}

	for _, task := range tasks {
		fmt.Fprintln(cmd.OutOrStdout(), formatTask(task))
	}
	return nil
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	task, err := app.store.Tasks().Create(cmd.Context(), tasksUser, args[0], tasksDescription)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", formatTask(*task))
	return nil
}

func runTasksDone(cmd *cobra.Command, args []string) error {
	return setTaskCompleted(cmd, args[0], true)
}

func runTasksUndone(cmd *cobra.Command, args []string) error {
	return setTaskCompleted(cmd, args[0], false)
}

func setTaskCompleted(cmd *cobra.Command, taskID string, completed bool) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	task, err := app.store.Tasks().SetCompleted(cmd.Context(), taskID, tasksUser, completed)
	if err != nil {
		return err
	}
	if task == nil {
		return fmt.Errorf("task not found: %s", taskID)
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatTask(*task))
	return nil
}

func runTasksRm(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	deleted, err := app.store.Tasks().Delete(cmd.Context(), args[0], tasksUser)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("task not found: %s", args[0])
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func formatTask(task store.Task) string {
	status := "[ ]"
	if task.Completed {
		status = "[x]"
	}
	if task.Description != "" {
		return fmt.Sprintf("%s %s  %s - %s", status, task.ID, task.Title, task.Description)
	}
	return fmt.Sprintf("%s %s  %s", status, task.ID, task.Title)
}
