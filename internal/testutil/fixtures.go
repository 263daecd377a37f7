package testutil

// LegacySchema is the catalog layout from before movie notes existed.
const LegacySchema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE NOT NULL
);
CREATE TABLE movies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	year INTEGER NOT NULL,
	rating REAL NOT NULL,
	poster_url TEXT,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
	UNIQUE(user_id, title)
)`

// LegacyFixtures seeds one user with two movies into LegacySchema.
const LegacyFixtures = `
INSERT INTO users (name) VALUES ('ana');
INSERT INTO movies (user_id, title, year, rating, poster_url) VALUES (1, 'Heat', 1995, 8.3, 'http://img/heat.jpg');
INSERT INTO movies (user_id, title, year, rating) VALUES (1, 'Up', 2009, 8.2)`

// LoadLegacy creates LegacySchema and loads LegacyFixtures.
func (tdb *TestDB) LoadLegacy() {
	tdb.t.Helper()
	if err := tdb.ExecuteSQL(LegacySchema); err != nil {
		tdb.t.Fatalf("Failed to create legacy schema: %v", err)
	}
	if err := tdb.ExecuteSQL(LegacyFixtures); err != nil {
		tdb.t.Fatalf("Failed to load legacy fixtures: %v", err)
	}
}
