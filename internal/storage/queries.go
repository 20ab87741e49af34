package storage

const createEntrySQL = `
INSERT INTO entries (kind, category, description, amount_cents, created_at)
VALUES (?, ?, ?, ?, ?)
`

const listItemsByKindSQL = `
SELECT category, amount_cents
FROM entries
WHERE kind = ?
ORDER BY id
`

const listEntriesSQL = `
SELECT id, kind, category, description, amount_cents, created_at
FROM entries
WHERE kind = ?
ORDER BY id DESC
`

const createGoalSQL = `
INSERT INTO goals (name, target_cents, current_cents, deadline, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`

const goalColumns = `id, name, target_cents, current_cents, deadline, created_at, last_status, version, updated_at`

const getGoalSQL = `
SELECT ` + goalColumns + `
FROM goals
WHERE id = ?
`

const listGoalsSQL = `
SELECT ` + goalColumns + `
FROM goals
ORDER BY id
`

const listGoalsForReviewSQL = `
SELECT ` + goalColumns + `
FROM goals
ORDER BY updated_at
LIMIT ?
`

const updateGoalProgressSQL = `
UPDATE goals
SET current_cents = current_cents + ?,
    version = version + 1,
    updated_at = ?
WHERE id = ?
`

const createContributionSQL = `
INSERT INTO contributions (goal_id, amount_cents, note, created_at)
VALUES (?, ?, ?, ?)
`

const listContributionsSQL = `
SELECT id, goal_id, amount_cents, note, created_at
FROM contributions
WHERE goal_id = ?
ORDER BY id DESC
`

const setLastStatusSQL = `
UPDATE goals
SET last_status = ?,
    updated_at = ?
WHERE id = ?
`
