package storage

const schema = `
-- The 'collections' table holds one serialized JSON array per entity kind,
-- keyed by a fixed string per kind (subjects, tasks, exams, notes, goals,
-- events). Saves replace the whole array; there is no schema version field.
CREATE TABLE IF NOT EXISTS collections (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL
);
`
