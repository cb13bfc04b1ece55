// ABOUTME: Database schema definitions
// ABOUTME: Creates users, people, groups, interactions, profile detail, task and plan tables
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT,
	timezone TEXT,
	onboarding_stage TEXT NOT NULL DEFAULT 'new' CHECK(onboarding_stage IN ('new', 'growing', 'established')),
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS people (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT,
	bio TEXT,
	birthday DATE,
	follow_up_score REAL NOT NULL DEFAULT 0,
	follow_up_reason TEXT,
	ai_summary TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_people_user_id ON people(user_id);

CREATE TABLE IF NOT EXISTS person_groups (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	slug TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE(user_id, slug),
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS group_members (
	group_id TEXT NOT NULL,
	person_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (group_id, person_id),
	FOREIGN KEY (group_id) REFERENCES person_groups(id) ON DELETE CASCADE,
	FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_group_members_person ON group_members(person_id);

CREATE TABLE IF NOT EXISTS interactions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	person_id TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('message', 'call', 'meeting', 'email', 'event', 'note')),
	note TEXT,
	occurred_at DATETIME NOT NULL,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_interactions_person ON interactions(person_id, occurred_at DESC);

CREATE TABLE IF NOT EXISTS contact_methods (
	id TEXT PRIMARY KEY,
	person_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	value TEXT NOT NULL,
	label TEXT,
	FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS addresses (
	id TEXT PRIMARY KEY,
	person_id TEXT NOT NULL,
	label TEXT,
	line1 TEXT,
	city TEXT,
	region TEXT,
	postal_code TEXT,
	country TEXT,
	FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS websites (
	id TEXT PRIMARY KEY,
	person_id TEXT NOT NULL,
	url TEXT NOT NULL,
	label TEXT,
	FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS organizations (
	id TEXT PRIMARY KEY,
	person_id TEXT NOT NULL,
	name TEXT NOT NULL,
	title TEXT,
	FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS person_relations (
	id TEXT PRIMARY KEY,
	person_id TEXT NOT NULL,
	related_person_id TEXT NOT NULL,
	label TEXT,
	FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE,
	FOREIGN KEY (related_person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	person_id TEXT NOT NULL,
	trigger_type TEXT NOT NULL CHECK(trigger_type IN ('follow_up', 'birthday_reminder', 'manual')),
	context TEXT NOT NULL,
	call_to_action TEXT NOT NULL,
	suggested_action_type TEXT NOT NULL,
	suggested_action TEXT NOT NULL,
	end_at DATETIME NOT NULL,
	completed_at DATETIME,
	skipped_at DATETIME,
	snoozed_at DATETIME,
	bad_suggestion INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tasks_user_person ON tasks(user_id, person_id, trigger_type);

CREATE TABLE IF NOT EXISTS action_plans (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	state TEXT NOT NULL CHECK(state IN ('raw', 'injected')),
	action_plan TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_action_plans_user_created ON action_plans(user_id, state, created_at DESC);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
