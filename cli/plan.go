// ABOUTME: Action plan CLI commands
// ABOUTME: Generate, show, resume and run the nightly batch of daily plans
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/plan"
)

// PlanGenerateCommand generates and materializes today's plan for one user.
func PlanGenerateCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	_ = fs.Parse(args)

	ctx := context.Background()
	userID, err := app.ResolveUser(ctx, *user)
	if err != nil {
		return err
	}

	res, err := app.Plans.RunDaily(ctx, userID, app.Now())
	if err != nil {
		return fmt.Errorf("%s", apperr.Display(err))
	}

	_, _ = fmt.Fprintf(app.Out, "✓ Plan %s (%s)\n", res.Plan.ID, res.Plan.State)
	_, _ = fmt.Fprintf(app.Out, "  Tasks built: %d\n", len(res.TaskIDs))
	if len(res.Failures) > 0 {
		_, _ = fmt.Fprintf(app.Out, "  Drafts skipped: %d\n", len(res.Failures))
		for _, f := range res.Failures {
			_, _ = fmt.Fprintf(app.Out, "    - person %s: %s\n", f.PersonID, f.Code)
		}
	}
	return nil
}

// PlanShowCommand prints today's injected plan.
func PlanShowCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	_ = fs.Parse(args)

	ctx := context.Background()
	userID, err := app.ResolveUser(ctx, *user)
	if err != nil {
		return err
	}

	view, err := app.Plans.GetActionPlan(ctx, userID, app.Now())
	if apperr.IsNotFound(err) {
		_, _ = fmt.Fprintln(app.Out, "No plan yet today. Run 'tend plan generate'.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s", apperr.Display(err))
	}
	printPlan(app, view)
	return nil
}

func printPlan(app *App, view *plan.View) {
	ap := view.ActionPlan
	_, _ = fmt.Fprintf(app.Out, "%s  (%s)\n", ap.ExecutiveSummary.Title, ap.BuildDate)
	if ap.ExecutiveSummary.Content != "" {
		_, _ = fmt.Fprintf(app.Out, "%s\n", ap.ExecutiveSummary.Content)
	}

	built := make(map[string]string, len(view.Tasks))
	for _, t := range view.Tasks {
		built[t.ID.String()] = t.Status
	}

	for _, section := range ap.GroupSections {
		_, _ = fmt.Fprintf(app.Out, "\n%s %s\n", section.Icon, section.Title)
		w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "  PERSON\tACTION\tDUE\tSTATUS\tTASK")
		for _, d := range section.Tasks {
			status, task := "not built", "-"
			if s, ok := built[d.ID]; ok {
				status, task = s, d.ID
			}
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", d.PersonName, d.TaskType, d.TaskDueDate, status, task)
		}
		_ = w.Flush()
	}

	if ap.Quote.Text != "" {
		_, _ = fmt.Fprintf(app.Out, "\n\"%s\" (%s)\n", ap.Quote.Text, ap.Quote.Author)
	}
}

// PlanResumeCommand finishes a plan that was saved raw but never materialized.
func PlanResumeCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("resume", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	_ = fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("plan ID is required")
	}

	ctx := context.Background()
	userID, err := app.ResolveUser(ctx, *user)
	if err != nil {
		return err
	}

	res, err := app.Plans.ResumeRawPlan(ctx, userID, fs.Arg(0), app.Now())
	if err != nil {
		return fmt.Errorf("%s", apperr.Display(err))
	}
	_, _ = fmt.Fprintf(app.Out, "✓ Plan %s resumed: %d tasks built, %d skipped\n", res.Plan.ID, len(res.TaskIDs), len(res.Failures))
	return nil
}

// PlanNightlyCommand runs the daily plan for every user.
func PlanNightlyCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("nightly", flag.ExitOnError)
	_ = fs.Parse(args)

	outcomes, err := app.Plans.RunNightly(context.Background(), app.Now())
	if err != nil {
		return fmt.Errorf("%s", apperr.Display(err))
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "USER\tPLAN\tTASKS\tSKIPPED\tRESULT")
	_, _ = fmt.Fprintln(w, "----\t----\t-----\t-------\t------")
	failed := 0
	for _, o := range outcomes {
		result := "ok"
		if !o.OK() {
			failed++
			result = o.Code
		}
		planID := o.PlanID
		if planID == "" {
			planID = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", o.UserID, planID, o.Tasks, o.Failed, result)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(app.Out, "\n%d users, %d failed\n", len(outcomes), failed)
	return nil
}
