package repository

// Schema creates the invitation tables.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS candidate_invitations (
		id TEXT PRIMARY KEY,
		job_posting_id TEXT NOT NULL REFERENCES job_postings (id),
		token TEXT NOT NULL UNIQUE,
		candidate_name TEXT NOT NULL,
		candidate_email TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		sent_at TIMESTAMP NOT NULL,
		viewed_at TIMESTAMP,
		responded_at TIMESTAMP,
		expires_at TIMESTAMP NOT NULL,
		created_by TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_candidate_invitations_posting ON candidate_invitations (job_posting_id)`,
	`CREATE TABLE IF NOT EXISTS screening_responses (
		invitation_id TEXT NOT NULL REFERENCES candidate_invitations (id),
		question_type TEXT NOT NULL,
		question_id TEXT NOT NULL,
		answer_type TEXT NOT NULL,
		answer TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (invitation_id, question_type, question_id)
	)`,
}
