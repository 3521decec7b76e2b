package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/emrealmaoglu/trailium/cli/pkg/api"
	"github.com/emrealmaoglu/trailium/cli/pkg/output"
)

var todosCmd = &cobra.Command{
	Use:     "todos",
	Aliases: []string{"todo"},
	Short:   "Manage todo lists and items",
}

var todosListsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Show your todo lists with progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		page, size := getPageFlags(cmd)
		lists, err := api.ListTodoLists(page, size)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(lists.Results))
		for _, l := range lists.Results {
			rows = append(rows, []string{
				strconv.FormatUint(uint64(l.ID), 10),
				l.Name,
				l.Kind,
				strconv.Itoa(l.ItemsCount),
				fmt.Sprintf("%d%%", l.Progress),
			})
		}
		return output.PrintTable(lists, []string{"ID", "NAME", "KIND", "ITEMS", "PROGRESS"}, rows)
	},
}

var todosCreateListCmd = &cobra.Command{
	Use:   "create-list <name...>",
	Short: "Create a todo list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		description, _ := cmd.Flags().GetString("description")
		if _, err := requireSession(); err != nil {
			return err
		}

		list, err := api.CreateTodoList(api.TodoListRequest{
			Name:        strings.Join(args, " "),
			Description: description,
			Kind:        kind,
		})
		if err != nil {
			return err
		}
		output.PrintSuccess("Created list %d (%s)", list.ID, list.Name)
		return nil
	},
}

var todosDeleteListCmd = &cobra.Command{
	Use:   "delete-list <list-id>",
	Short: "Delete a list and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "list")
		if err != nil {
			return err
		}
		if _, err := requireSession(); err != nil {
			return err
		}
		if err := api.DeleteTodoList(id); err != nil {
			return err
		}
		output.PrintSuccess("Deleted list %d", id)
		return nil
	},
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

var todosItemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Show items, optionally for one list",
	RunE: func(cmd *cobra.Command, args []string) error {
		listID, _ := cmd.Flags().GetUint("list")
		if _, err := requireSession(); err != nil {
			return err
		}
		page, size := getPageFlags(cmd)
		items, err := api.ListTodoItems(listID, page, size)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(items.Results))
		for _, it := range items.Results {
			due, prio := "-", "-"
			if it.DueDate != nil {
				due = *it.DueDate
			}
			if it.Priority != nil {
				prio = it.Priority.Key
			}
			rows = append(rows, []string{
				strconv.FormatUint(uint64(it.ID), 10),
				checkbox(it.IsDone),
				it.Title,
				due,
				prio,
				fmt.Sprintf("%d%%", it.ProgressCached),
			})
		}
		return output.PrintTable(items, []string{"ID", "DONE", "TITLE", "DUE", "PRIORITY", "PROGRESS"}, rows)
	},
}

// resolvePriority maps a priority key such as "high" to its id
func resolvePriority(key string) (*uint, error) {
	if key == "" {
		return nil, nil
	}
	priorities, err := api.ListPriorities()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(priorities))
	for _, p := range priorities {
		if strings.EqualFold(p.Key, key) {
			id := p.ID
			return &id, nil
		}
		keys = append(keys, p.Key)
	}
	return nil, fmt.Errorf("unknown priority %q (one of %s)", key, strings.Join(keys, ", "))
}

var todosAddCmd = &cobra.Command{
	Use:     "add-item <list-id> <title...>",
	Aliases: []string{"add"},
	Short:   "Add an item to a list",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		listID, err := parseID(args[0], "list")
		if err != nil {
			return err
		}
		due, _ := cmd.Flags().GetString("due")
		priority, _ := cmd.Flags().GetString("priority")

		req := api.TodoItemRequest{List: listID, Title: strings.Join(args[1:], " ")}
		if due != "" {
			if _, err := time.Parse("2006-01-02", due); err != nil {
				return fmt.Errorf("--due must be YYYY-MM-DD")
			}
			req.DueDate = &due
		}

		if _, err := requireSession(); err != nil {
			return err
		}
		if req.PriorityID, err = resolvePriority(priority); err != nil {
			return err
		}

		item, err := api.CreateTodoItem(req)
		if err != nil {
			return err
		}
		output.PrintSuccess("Added item %d to list %d", item.ID, item.List)
		return nil
	},
}

var todosToggleCmd = &cobra.Command{
	Use:   "toggle <item-id>",
	Short: "Mark an item done or not done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "item")
		if err != nil {
			return err
		}
		if _, err := requireSession(); err != nil {
			return err
		}
		item, err := api.ToggleTodoItem(id)
		if err != nil {
			return err
		}
		output.PrintSuccess("%s %s (%d%%)", checkbox(item.IsDone), item.Title, item.ProgressCached)
		return nil
	},
}

var todosSubItemCmd = &cobra.Command{
	Use:   "subitem <item-id> <title...>",
	Short: "Add a checklist entry under an item",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		parentID, err := parseID(args[0], "item")
		if err != nil {
			return err
		}
		if _, err := requireSession(); err != nil {
			return err
		}
		sub, err := api.AddSubItem(parentID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		output.PrintSuccess("Added sub-item %d to item %d", sub.ID, sub.Parent)
		return nil
	},
}

var todosPrioritiesCmd = &cobra.Command{
	Use:   "priorities",
	Short: "List priority levels",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		priorities, err := api.ListPriorities()
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(priorities))
		for _, p := range priorities {
			def := ""
			if p.IsDefault {
				def = "yes"
			}
			rows = append(rows, []string{strconv.FormatUint(uint64(p.ID), 10), p.Key, p.Name, def})
		}
		return output.PrintTable(priorities, []string{"ID", "KEY", "NAME", "DEFAULT"}, rows)
	},
}

func init() {
	pageFlags(todosListsCmd)
	pageFlags(todosItemsCmd)
	todosItemsCmd.Flags().Uint("list", 0, "Only items of this list id")

	todosCreateListCmd.Flags().String("kind", "", "personal, work or other (server default: personal)")
	todosCreateListCmd.Flags().String("description", "", "List description")

	todosAddCmd.Flags().String("due", "", "Due date, YYYY-MM-DD")
	todosAddCmd.Flags().String("priority", "", "Priority key, for example high")

	todosCmd.AddCommand(todosListsCmd)
	todosCmd.AddCommand(todosCreateListCmd)
	todosCmd.AddCommand(todosDeleteListCmd)
	todosCmd.AddCommand(todosItemsCmd)
	todosCmd.AddCommand(todosAddCmd)
	todosCmd.AddCommand(todosToggleCmd)
	todosCmd.AddCommand(todosSubItemCmd)
	todosCmd.AddCommand(todosPrioritiesCmd)
}
