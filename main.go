// ABOUTME: Entry point for the tend CLI and MCP server
// ABOUTME: Routes to plan, followup, task, crm, tui or mcp commands based on arguments
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/harperreed/tend/cli"
	"github.com/harperreed/tend/config"
	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/logging"
	"github.com/harperreed/tend/tui"
)

const version = "0.1.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ~/.config/tend/config.toml)")
	dbPath := flag.String("db-path", "", "Database path (overrides database.path)")

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("tend version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		fatal(fmt.Errorf("invalid config: %w", err))
	}

	logger := logging.Setup(cfg.Log, os.Stderr)

	database, err := db.OpenDatabase(cfg.Database.Path)
	if err != nil {
		fatal(fmt.Errorf("failed to open database: %w", err))
	}
	defer database.Close()

	command, commandArgs := args[0], args[1:]
	if err := run(cfg, database, logger, command, commandArgs); err != nil {
		_ = database.Close()
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func run(cfg *config.Config, database *sql.DB, logger zerolog.Logger, command string, args []string) error {
	// crm commands never call the model, so they work without provider credentials
	if command == "crm" {
		app := cli.NewAppWithGenerator(cfg, database, nil, nil, logger)
		return runSub("crm", args, map[string]func([]string) error{
			"add-user":        func(a []string) error { return cli.AddUserCommand(app, a) },
			"add-contact":     func(a []string) error { return cli.AddContactCommand(app, a) },
			"list-contacts":   func(a []string) error { return cli.ListContactsCommand(app, a) },
			"add-group":       func(a []string) error { return cli.AddGroupCommand(app, a) },
			"join-group":      func(a []string) error { return cli.JoinGroupCommand(app, a) },
			"log-interaction": func(a []string) error { return cli.LogInteractionCommand(app, a) },
		})
	}

	app, err := cli.NewApp(cfg, database, logger)
	if err != nil {
		return err
	}

	switch command {
	case "mcp":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.MCPCommand(ctx, app, version)

	case "plan":
		return runSub("plan", args, map[string]func([]string) error{
			"generate": func(a []string) error { return cli.PlanGenerateCommand(app, a) },
			"show":     func(a []string) error { return cli.PlanShowCommand(app, a) },
			"resume":   func(a []string) error { return cli.PlanResumeCommand(app, a) },
			"nightly":  func(a []string) error { return cli.PlanNightlyCommand(app, a) },
			"view":     func(a []string) error { return viewCommand(app, a) },
		})

	case "followup":
		return runSub("followup", args, map[string]func([]string) error{
			"score":   func(a []string) error { return cli.FollowupScoreCommand(app, a) },
			"set":     func(a []string) error { return cli.FollowupSetCommand(app, a) },
			"refresh": func(a []string) error { return cli.FollowupRefreshCommand(app, a) },
			"list":    func(a []string) error { return cli.FollowupListCommand(app, a) },
		})

	case "task":
		transition := func(verb string) func([]string) error {
			return func(a []string) error { return cli.TaskTransitionCommand(app, verb, a) }
		}
		return runSub("task", args, map[string]func([]string) error{
			"show":     func(a []string) error { return cli.TaskShowCommand(app, a) },
			"build":    func(a []string) error { return cli.TaskBuildCommand(app, a) },
			"complete": transition("complete"),
			"skip":     transition("skip"),
			"snooze":   transition("snooze"),
			"bad":      transition("bad"),
		})

	case "tui":
		return viewCommand(app, args)
	}

	fmt.Printf("Unknown command: %s\n\n", command)
	printUsage()
	os.Exit(1)
	return nil
}

func runSub(group string, args []string, commands map[string]func([]string) error) error {
	if len(args) == 0 {
		fmt.Printf("Error: %s requires a subcommand\n\n", group)
		printUsage()
		os.Exit(1)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Printf("Unknown %s command: %s\n\n", group, args[0])
		printUsage()
		os.Exit(1)
	}
	return cmd(args[1:])
}

func viewCommand(app *cli.App, args []string) error {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	user := fs.String("user", "", "User ID (default: the only user)")
	_ = fs.Parse(args)

	userID, err := app.ResolveUser(context.Background(), *user)
	if err != nil {
		return err
	}
	return tui.Run(tui.Deps{
		DB:     app.DB,
		Plans:  app.Plans,
		Tasks:  app.Tasks,
		UserID: userID,
		Now:    app.Now,
	})
}

func printUsage() {
	fmt.Printf(`tend v%s - keep in touch with the people who matter

USAGE:
  tend [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <file>        Config file (default: ~/.config/tend/config.toml)
  --db-path <path>       Database path (default: ~/.local/share/tend/tend.db)

Most commands take --user <id>. It may be omitted when there is only one user.

COMMANDS:
  mcp                    Start MCP server on stdio
  plan                   Daily action plans
  followup               Follow-up scores
  task                   Tasks
  crm                    Users, contacts, groups and interactions
  tui                    Browse today's plan interactively (same as 'plan view')

PLAN COMMANDS:
  tend plan generate        Generate today's plan and build its tasks
  tend plan show            Print today's plan
  tend plan resume <id>     Finish a plan that was saved but never built
  tend plan nightly         Generate plans for every user
  tend plan view            Open today's plan in the terminal UI

FOLLOWUP COMMANDS:
  tend followup score [--dry-run] <contact-id>   Recalculate a contact's score
  tend followup set <contact-id> <score>          Set a manual score between 0 and 1
  tend followup refresh                           Rescore every contact
  tend followup list                              List contacts by score
    --min <score>             Only show scores at or above this value
    --limit <n>               Max results (default: 10)

TASK COMMANDS:
  tend task build [flags] <contact-id>   Suggest and save a task
    --trigger <t>             follow_up, birthday_reminder or manual (default: manual)
    --context <text>          Why you want to reach out
    --due <YYYY-MM-DD>        Due date (default: three days out)
  tend task show <task-id>
  tend task complete <task-id>
  tend task skip <task-id>
  tend task snooze --until <YYYY-MM-DD> <task-id>
  tend task bad <task-id>                Flag a bad suggestion
  Note: flags must come before the ID

CRM COMMANDS:
  tend crm add-user --name <name> [--email e] [--timezone tz]
  tend crm add-contact --first <name> [--last l] [--bio b] [--birthday YYYY-MM-DD] [--group g]
  tend crm list-contacts [--query q] [--limit n]
  tend crm add-group --name <name>
  tend crm join-group --group <name> <contact-id>
    inner-5, central-50 and strategic-100 are tiers; joining one leaves the others
  tend crm log-interaction [--type t] [--note n] [--on YYYY-MM-DD] <contact-id>

`, version)
}
