package tools

import (
	"context"
	"fmt"

	"github.com/nadia/taskwise/internal/store"
)

// RegisterTaskTools registers the task management capabilities against
// the given task store. This is the closed set of tools the assistant
// can act with.
func RegisterTaskTools(r *Registry, tasks *store.TaskStore) error {
	defs := []ToolDefinition{
		{
			Name:        "add_task",
			Description: "Add a new task to the user's todo list",
			Parameters: []ToolParameter{
				{Name: "title", Type: "string", Description: "Short title of the task", Required: true},
				{Name: "description", Type: "string", Description: "Optional longer description"},
			},
			Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				userID, err := userID(params)
				if err != nil {
					return nil, err
				}
				title, _ := stringParam(params, "title")
				description, _ := stringParam(params, "description")

				task, err := tasks.Create(ctx, userID, title, description)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"task": task}, nil
			},
		},
		{
			Name:        "list_tasks",
			Description: "List the user's tasks, pending ones by default",
			Parameters: []ToolParameter{
				{Name: "include_completed", Type: "boolean", Description: "Include completed tasks"},
			},
			Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				userID, err := userID(params)
				if err != nil {
					return nil, err
				}
				includeCompleted, _ := params["include_completed"].(bool)

				list, err := tasks.ListByUser(ctx, userID, includeCompleted)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{
					"tasks": list,
					"count": len(list),
				}, nil
			},
		},
		{
			Name:        "complete_task",
			Description: "Mark a task as completed",
			Parameters: []ToolParameter{
				{Name: "task_id", Type: "string", Description: "ID of the task to complete", Required: true},
			},
			Handler: setCompletedHandler(tasks, true),
		},
		{
			Name:        "uncomplete_task",
			Description: "Mark a completed task as pending again",
			Parameters: []ToolParameter{
				{Name: "task_id", Type: "string", Description: "ID of the task to reopen", Required: true},
			},
			Handler: setCompletedHandler(tasks, false),
		},
		{
			Name:        "delete_task",
			Description: "Delete a task from the user's todo list",
			Parameters: []ToolParameter{
				{Name: "task_id", Type: "string", Description: "ID of the task to delete", Required: true},
			},
			Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				userID, err := userID(params)
				if err != nil {
					return nil, err
				}
				taskID, _ := stringParam(params, "task_id")

				deleted, err := tasks.Delete(ctx, taskID, userID)
				if err != nil {
					return nil, err
				}
				if !deleted {
					return nil, fmt.Errorf("task not found: %s", taskID)
				}
				return map[string]interface{}{"deleted": taskID}, nil
			},
		},
		{
			Name:        "update_task",
			Description: "Update the title or description of a task",
			Parameters: []ToolParameter{
				{Name: "task_id", Type: "string", Description: "ID of the task to update", Required: true},
				{Name: "title", Type: "string", Description: "New title"},
				{Name: "description", Type: "string", Description: "New description"},
			},
			Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				userID, err := userID(params)
				if err != nil {
					return nil, err
				}
				taskID, _ := stringParam(params, "task_id")

				var upd store.TaskUpdate
				if title, ok := stringParam(params, "title"); ok {
					upd.Title = &title
				}
				if description, ok := stringParam(params, "description"); ok {
					upd.Description = &description
				}

				task, err := tasks.Update(ctx, taskID, userID, upd)
				if err != nil {
					return nil, err
				}
				if task == nil {
					return nil, fmt.Errorf("task not found: %s", taskID)
				}
				return map[string]interface{}{"task": task}, nil
			},
		},
	}

	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return err
		}
	}

	return nil
}

func setCompletedHandler(tasks *store.TaskStore, completed bool) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		userID, err := userID(params)
		if err != nil {
			return nil, err
		}
		taskID, _ := stringParam(params, "task_id")

		task, err := tasks.SetCompleted(ctx, taskID, userID, completed)
		if err != nil {
			return nil, err
		}
		if task == nil {
			return nil, fmt.Errorf("task not found: %s", taskID)
		}
		return map[string]interface{}{"task": task}, nil
	}
}

func userID(params map[string]interface{}) (string, error) {
	id, ok := stringParam(params, UserIDParam)
	if !ok || id == "" {
		return "", fmt.Errorf("missing user identity")
	}
	return id, nil
}

func stringParam(params map[string]interface{}, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
