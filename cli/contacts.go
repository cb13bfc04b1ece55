// ABOUTME: CRM CLI commands
// ABOUTME: Human-friendly commands for users, contacts, groups and interactions
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/handlers"
	"github.com/harperreed/tend/models"
)

// AddUserCommand creates a user along with the reserved tier groups.
func AddUserCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("add-user", flag.ExitOnError)
	name := fs.String("name", "", "User name (required)")
	email := fs.String("email", "", "Email address")
	timezone := fs.String("timezone", "", "IANA timezone, e.g. America/Chicago")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	if *timezone != "" {
		if _, err := time.LoadLocation(*timezone); err != nil {
			return fmt.Errorf("invalid --timezone: %w", err)
		}
	}

	ctx := context.Background()
	now := app.Now()
	user := &models.User{Name: *name, Email: *email, Timezone: *timezone}
	if err := db.CreateUser(ctx, app.DB, user, now); err != nil {
		return err
	}
	if err := db.EnsureReservedGroups(ctx, app.DB, user.ID, now); err != nil {
		return fmt.Errorf("failed to create tier groups: %w", err)
	}

	_, _ = fmt.Fprintf(app.Out, "✓ User created: %s (ID: %s)\n", user.Name, user.ID)
	return nil
}

// AddContactCommand adds a new contact.
func AddContactCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("add-contact", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	first := fs.String("first", "", "First name (required)")
	last := fs.String("last", "", "Last name")
	bio := fs.String("bio", "", "A few words about the contact")
	birthday := fs.String("birthday", "", "Birthday YYYY-MM-DD")
	group := fs.String("group", "", "Group to join, e.g. inner-5")
	_ = fs.Parse(args)

	if *first == "" {
		return fmt.Errorf("--first is required")
	}
	ctx := context.Background()
	userID, err := app.ResolveUser(ctx, *user)
	if err != nil {
		return err
	}

	person := &models.Person{UserID: userID, FirstName: *first, LastName: *last, Bio: *bio}
	if *birthday != "" {
		day, err := time.Parse("2006-01-02", *birthday)
		if err != nil {
			return fmt.Errorf("invalid --birthday: %w", err)
		}
		person.Birthday = &day
	}

	now := app.Now()
	if err := db.CreatePerson(ctx, app.DB, person, now); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	_, _ = fmt.Fprintf(app.Out, "✓ Contact created: %s (ID: %s)\n", person.FullName(), person.ID)

	if *group != "" {
		g, err := handlers.EnsureGroup(ctx, app.DB, userID, *group, now)
		if err != nil {
			return err
		}
		if err := db.AddPersonToGroup(ctx, app.DB, userID, person.ID, g.ID, now); err != nil {
			return fmt.Errorf("failed to join group: %w", err)
		}
		_, _ = fmt.Fprintf(app.Out, "  Group: %s\n", g.Name)
	}
	return nil
}

// ListContactsCommand lists contacts with their groups.
func ListContactsCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("list-contacts", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	query := fs.String("query", "", "Search by first or last name")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	ctx := context.Background()
	userID, err := app.ResolveUser(ctx, *user)
	if err != nil {
		return err
	}

	people, err := db.ListPeople(ctx, app.DB, userID, *query, *limit)
	if err != nil {
		return fmt.Errorf("failed to find contacts: %w", err)
	}
	if len(people) == 0 {
		_, _ = fmt.Fprintln(app.Out, "No contacts found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tBIRTHDAY\tGROUPS\tSCORE\tID")
	_, _ = fmt.Fprintln(w, "----\t--------\t------\t-----\t--")
	for _, p := range people {
		birthday := "-"
		if p.Birthday != nil {
			birthday = p.Birthday.Format("Jan 2")
		}
		groups, err := db.ListGroupsForPerson(ctx, app.DB, p.ID)
		if err != nil {
			return fmt.Errorf("failed to list groups: %w", err)
		}
		names := make([]string, len(groups))
		for i, g := range groups {
			names[i] = g.Name
		}
		groupCol := strings.Join(names, ", ")
		if groupCol == "" {
			groupCol = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n", p.FullName(), birthday, groupCol, p.FollowUpScore, p.ID)
	}
	_ = w.Flush()
	_, _ = fmt.Fprintf(app.Out, "\nTotal: %d contacts\n", len(people))
	return nil
}

// AddGroupCommand creates a group, or reports the existing one with that slug.
func AddGroupCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("add-group", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	name := fs.String("name", "", "Group name (required)")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	ctx := context.Background()
	userID, err := app.ResolveUser(ctx, *user)
	if err != nil {
		return err
	}

	g, err := handlers.EnsureGroup(ctx, app.DB, userID, *name, app.Now())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(app.Out, "✓ Group: %s (slug: %s)\n", g.Name, g.Slug)
	return nil
}

// JoinGroupCommand: tend crm join-group --group <name> <contact-id>.
func JoinGroupCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("join-group", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	group := fs.String("group", "", "Group name or slug (required)")
	_ = fs.Parse(args)

	if *group == "" {
		return fmt.Errorf("--group is required")
	}
	personID, err := parseUUIDArg(fs.Args(), "contact")
	if err != nil {
		return err
	}
	ctx := context.Background()
	userID, err := app.ResolveUser(ctx, *user)
	if err != nil {
		return err
	}

	now := app.Now()
	g, err := handlers.EnsureGroup(ctx, app.DB, userID, *group, now)
	if err != nil {
		return err
	}
	if err := db.AddPersonToGroup(ctx, app.DB, userID, personID, g.ID, now); err != nil {
		return fmt.Errorf("failed to join group: %w", err)
	}
	_, _ = fmt.Fprintf(app.Out, "✓ Joined %s\n", g.Name)
	return nil
}

// LogInteractionCommand records a touchpoint with a contact.
func LogInteractionCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("log-interaction", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	kind := fs.String("type", models.InteractionMessage, "message, call, meeting, email, event or note")
	note := fs.String("note", "", "What happened")
	on := fs.String("on", "", "Date YYYY-MM-DD (default: now)")
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
	if _, err := db.GetPerson(ctx, app.DB, userID, personID); err != nil {
		return fmt.Errorf("contact not found: %s", personID)
	}

	interaction := &models.Interaction{UserID: userID, PersonID: personID, Type: *kind, Note: *note}
	if *on != "" {
		day, err := time.Parse("2006-01-02", *on)
		if err != nil {
			return fmt.Errorf("invalid --on: %w", err)
		}
		interaction.OccurredAt = day
	}
	if err := db.LogInteraction(ctx, app.DB, interaction, app.Now()); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(app.Out, "✓ Logged %s on %s\n", interaction.Type, interaction.OccurredAt.Format("2006-01-02"))
	return nil
}
