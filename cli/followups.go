// ABOUTME: Follow-up score CLI commands
// ABOUTME: Score one contact, set a manual score, rescore everyone, list by urgency
package cli

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/db"
)

// FollowupScoreCommand recalculates and stores one contact's score.
func FollowupScoreCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	dryRun := fs.Bool("dry-run", false, "Print the score without saving it")
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

	if *dryRun {
		score, err := app.Scores.Calculate(ctx, userID, personID, app.Now())
		if err != nil {
			return fmt.Errorf("%s", apperr.Display(err))
		}
		_, _ = fmt.Fprintf(app.Out, "Score: %.2f\n  %s\n", score.Score, score.Reason)
		return nil
	}

	score, err := app.Scores.Update(ctx, userID, personID, nil, app.Now())
	if err != nil {
		return fmt.Errorf("%s", apperr.Display(err))
	}
	_, _ = fmt.Fprintf(app.Out, "✓ Score saved: %.2f\n  %s\n", score.Score, score.Reason)
	return nil
}

// FollowupSetCommand stores a manual score: tend followup set <contact-id> <score>.
func FollowupSetCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	_ = fs.Parse(args)

	personID, err := parseUUIDArg(fs.Args(), "contact")
	if err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("score is required")
	}
	value, err := strconv.ParseFloat(fs.Arg(1), 64)
	if err != nil {
		return fmt.Errorf("invalid score: %w", err)
	}

	ctx := context.Background()
	userID, err := app.ResolveUser(ctx, *user)
	if err != nil {
		return err
	}

	score, err := app.Scores.Update(ctx, userID, personID, &value, app.Now())
	if err != nil {
		return fmt.Errorf("%s", apperr.Display(err))
	}
	_, _ = fmt.Fprintf(app.Out, "✓ Score set to %.2f\n", score.Score)
	return nil
}

// FollowupRefreshCommand rescores every contact of the user.
func FollowupRefreshCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("refresh", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	_ = fs.Parse(args)

	ctx := context.Background()
	userID, err := app.ResolveUser(ctx, *user)
	if err != nil {
		return err
	}

	sum, err := app.Scores.RefreshAll(ctx, userID, app.Now())
	if err != nil {
		return fmt.Errorf("%s", apperr.Display(err))
	}
	_, _ = fmt.Fprintf(app.Out, "✓ Rescored %d contacts (%d failed)\n", sum.Scored, sum.Failed)
	return nil
}

// FollowupListCommand lists contacts by follow-up score, most urgent first.
func FollowupListCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	minScore := fs.Float64("min", 0, "Only show scores at or above this value")
	limit := fs.Int("limit", 10, "Maximum number of contacts to show")
	_ = fs.Parse(args)

	ctx := context.Background()
	userID, err := app.ResolveUser(ctx, *user)
	if err != nil {
		return err
	}

	people, err := db.ListPeople(ctx, app.DB, userID, "", 0)
	if err != nil {
		return fmt.Errorf("failed to list contacts: %w", err)
	}
	sort.SliceStable(people, func(i, j int) bool { return people[i].FollowUpScore > people[j].FollowUpScore })

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSCORE\tREASON\tID")
	_, _ = fmt.Fprintln(w, "----\t-----\t------\t--")

	shown := 0
	for _, p := range people {
		if p.FollowUpScore < *minScore || (*limit > 0 && shown >= *limit) {
			continue
		}
		indicator := "🟢"
		if p.FollowUpScore >= 0.7 {
			indicator = "🔴"
		} else if p.FollowUpScore >= 0.4 {
			indicator = "🟡"
		}
		reason := p.FollowUpReason
		if reason == "" {
			reason = "-"
		}
		_, _ = fmt.Fprintf(w, "%s %s\t%.2f\t%s\t%s\n", indicator, p.FullName(), p.FollowUpScore, reason, p.ID)
		shown++
	}
	_ = w.Flush()
	return nil
}
