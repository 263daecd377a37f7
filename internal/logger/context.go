package logger

// Component-specific logger functions

// DB returns a logger for storage operations
func DB() Logger {
	return WithField("component", "db")
}

// Migration returns a logger for schema migration
func Migration() Logger {
	return WithField("component", "migration")
}

// Catalog returns a logger for catalog operations
func Catalog() Logger {
	return WithField("component", "catalog")
}

// CLI returns a logger for CLI operations
func CLI() Logger {
	return WithField("component", "cli")
}

// ConfigLoader returns a logger for configuration loading
func ConfigLoader() Logger {
	return WithField("component", "config")
}
