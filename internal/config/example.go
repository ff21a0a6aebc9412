package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskpad configuration file
# Values can be overridden by .env, TASKPAD_* environment variables or CLI flags

# Hook command run after every saved change: <command> <event> <id> <key>
# The task JSON is written to the hook's stdin.
# hook_command = "/path/to/hook.sh"

# Log directory (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.taskpad/logs"

# Logging (level: debug, info, warn, error; format: text, json, logfmt)
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false

# View shown when the terminal UI starts: pending or completed
default_view = "pending"

[storage]
# Backend: memory, file, sqlite or mysql
backend = "file"

# Directory for the file (store.json) and sqlite (taskpad.db) backends
data_dir = "~/.taskpad/data"

# MySQL data source name, required for the mysql backend
# dsn = "user:password@tcp(127.0.0.1:3306)/taskpad"

# Timeout for each storage call in seconds (0 = none)
timeout_seconds = 5

# Cache reads for this many seconds (0 = off)
cache_ttl_seconds = 0

# Concurrent reads when loading tasks (0 = unbounded)
fetch_workers = 8
`
}
