package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasktracker/internal/client"
)

func newTasksCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "List and manage your tasks",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := st.load(); err != nil {
				return err
			}
			return st.requireLogin()
		},
	}
	cmd.AddCommand(
		newTasksListCmd(st),
		newTasksShowCmd(st),
		newTasksAddCmd(st),
		newTasksEditCmd(st),
		newTasksRmCmd(st),
	)
	return cmd
}

func newTasksListCmd(st *state) *cobra.Command {
	var q client.TaskQuery
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := st.api.ListTasks(cmd.Context(), q)
			if err != nil {
				return err
			}
			return renderTaskList(cmd.OutOrStdout(), tasks)
		},
	}
	cmd.Flags().StringVarP(&q.Search, "search", "s", "", "match title or description")
	cmd.Flags().StringVar(&q.Status, "status", "", "pending, in-progress or completed")
	return cmd
}

func newTasksShowCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := st.api.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return renderTask(cmd.OutOrStdout(), task)
		},
	}
}

func newTasksAddCmd(st *state) *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := client.NewTask{Title: title, Description: description}
			if cmd.Flags().Changed("status") {
				req.Status = &status
			}
			task, err := st.api.CreateTask(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s.\n", task.ID)
			return renderTask(cmd.OutOrStdout(), task)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&status, "status", "", "initial status (default pending)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newTasksEditCmd(st *state) *cobra.Command {
	var title, description, status string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update client.TaskUpdate
			if cmd.Flags().Changed("title") {
				update.Title = &title
			}
			if cmd.Flags().Changed("description") {
				update.Description = &description
			}
			if cmd.Flags().Changed("status") {
				update.Status = &status
			}
			if update.Title == nil && update.Description == nil && update.Status == nil {
				return fmt.Errorf("nothing to change, pass --title, --description or --status")
			}

			task, err := st.api.UpdateTask(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}
			return renderTask(cmd.OutOrStdout(), task)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	return cmd
}

func newTasksRmCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := st.api.DeleteTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}
