// ABOUTME: Task CLI commands
// ABOUTME: Build an ad hoc task, show one, and move it through its lifecycle
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/models"
	"github.com/harperreed/tend/tasks"
)

// TaskBuildCommand runs the task pipeline for one contact.
func TaskBuildCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	trigger := fs.String("trigger", string(models.TriggerManual), "follow_up, birthday_reminder or manual")
	taskContext := fs.String("context", "", "Why you want to reach out")
	due := fs.String("due", "", "Due date YYYY-MM-DD (default: three days out)")
	_ = fs.Parse(args)

	personID, err := parseUUIDArg(fs.Args(), "contact")
	if err != nil {
		return err
	}
	ctx := context.Background()
	userID, err := app.ResolveUser(ctx, *user)
	if err != nil {
		return err
	}

	in := tasks.BuildTaskInput{
		UserID:      userID,
		PersonID:    personID,
		Trigger:     models.Trigger(*trigger),
		TaskContext: *taskContext,
	}
	if *due != "" {
		day, err := time.Parse("2006-01-02", *due)
		if err != nil {
			return fmt.Errorf("invalid --due: %w", err)
		}
		in.EndAt = models.EndOfDay(day)
	}

	task, err := app.Tasks.BuildTask(ctx, in, app.Now())
	if err != nil {
		return fmt.Errorf("%s", apperr.Display(err))
	}
	_, _ = fmt.Fprintf(app.Out, "✓ Task created (ID: %s)\n", task.ID)
	return printTask(ctx, app, userID, task.ID.String())
}

// TaskShowCommand prints one task with its suggested action.
func TaskShowCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("task ID is required")
	}
	ctx := context.Background()
	userID, err := app.ResolveUser(ctx, *user)
	if err != nil {
		return err
	}
	return printTask(ctx, app, userID, fs.Arg(0))
}

func printTask(ctx context.Context, app *App, userID uuid.UUID, rawID string) error {
	taskID, err := parseUUIDArg([]string{rawID}, "task")
	if err != nil {
		return err
	}
	view, err := app.Tasks.GetTask(ctx, userID, taskID)
	if err != nil {
		return fmt.Errorf("%s", apperr.Display(err))
	}

	_, _ = fmt.Fprintf(app.Out, "%s %s: %s\n", view.Person.FirstName, view.Person.LastName, view.CallToAction)
	_, _ = fmt.Fprintf(app.Out, "  Status:  %s\n", view.Status)
	_, _ = fmt.Fprintf(app.Out, "  Action:  %s\n", view.SuggestedActionType)
	_, _ = fmt.Fprintf(app.Out, "  Due:     %s\n", view.EndAt.Format("2006-01-02"))
	_, _ = fmt.Fprintf(app.Out, "  Context: %s\n", view.Context)
	if view.BadSuggestion {
		_, _ = fmt.Fprintln(app.Out, "  Flagged as a bad suggestion")
	}

	payload, err := json.MarshalIndent(view.SuggestedAction, "  ", "  ")
	if err != nil {
		return fmt.Errorf("failed to format suggestion: %w", err)
	}
	_, _ = fmt.Fprintf(app.Out, "  Suggestion:\n  %s\n", payload)
	return nil
}

// TaskTransitionCommand applies complete, skip, snooze or bad to a task.
func TaskTransitionCommand(app *App, verb string, args []string) error {
	fs := flag.NewFlagSet(verb, flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	until := fs.String("until", "", "New due date YYYY-MM-DD (snooze only)")
	_ = fs.Parse(args)

	taskID, err := parseUUIDArg(fs.Args(), "task")
	if err != nil {
		return err
	}
	ctx := context.Background()
	userID, err := app.ResolveUser(ctx, *user)
	if err != nil {
		return err
	}

	now := app.Now()
	var task *models.Task
	switch verb {
	case "complete":
		task, err = app.Tasks.Complete(ctx, userID, taskID, now)
	case "skip":
		task, err = app.Tasks.Skip(ctx, userID, taskID, now)
	case "bad":
		task, err = app.Tasks.FlagBad(ctx, userID, taskID, now)
	case "snooze":
		if *until == "" {
			return fmt.Errorf("--until is required")
		}
		day, perr := time.Parse("2006-01-02", *until)
		if perr != nil {
			return fmt.Errorf("invalid --until: %w", perr)
		}
		task, err = app.Tasks.Snooze(ctx, userID, taskID, models.EndOfDay(day), now)
	default:
		return fmt.Errorf("unknown task command: %s", verb)
	}
	if err != nil {
		return fmt.Errorf("%s", apperr.Display(err))
	}

	_, _ = fmt.Fprintf(app.Out, "✓ Task %s is now %s\n", task.ID, task.Status())
	return nil
}
