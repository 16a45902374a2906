package repository

// Schema creates the posting tables. Statements are idempotent and portable
// between sqlite and postgres.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS job_postings (
		id TEXT PRIMARY KEY,
		owner_user_id TEXT NOT NULL,
		organization_id TEXT,
		status TEXT NOT NULL,
		title TEXT NOT NULL,
		slug TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		employment_type TEXT NOT NULL DEFAULT '',
		salary_min BIGINT,
		salary_max BIGINT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		published_at TIMESTAMP,
		closed_at TIMESTAMP,
		archived_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_job_postings_owner ON job_postings (owner_user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_job_postings_status ON job_postings (status)`,
	`CREATE TABLE IF NOT EXISTS purchase_records (
		id TEXT PRIMARY KEY,
		job_posting_id TEXT NOT NULL UNIQUE REFERENCES job_postings (id),
		payment_status TEXT NOT NULL,
		amount BIGINT NOT NULL,
		currency TEXT NOT NULL,
		session_id TEXT,
		session_url TEXT,
		provider_ref TEXT,
		paid_at TIMESTAMP,
		expires_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_records_expires_at ON purchase_records (expires_at)`,
	`CREATE TABLE IF NOT EXISTS screening_questions (
		job_posting_id TEXT NOT NULL REFERENCES job_postings (id),
		question_type TEXT NOT NULL,
		question_id TEXT NOT NULL,
		answer_type TEXT NOT NULL,
		prompt TEXT NOT NULL,
		options TEXT NOT NULL DEFAULT '[]',
		requirement TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (job_posting_id, question_type, question_id)
	)`,
	`CREATE TABLE IF NOT EXISTS organization_members (
		organization_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		PRIMARY KEY (organization_id, user_id)
	)`,
}
