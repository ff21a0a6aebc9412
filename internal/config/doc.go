// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.taskpad/taskpad.toml or OS-specific config directory)
// 3. Project config file (taskpad.toml or .taskpad.toml in the project root)
// 4. A .env file in the project root
// 5. Environment variables (TASKPAD_*)
// 6. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
// Values from .env never override variables already set in the environment.
//
// User-level config locations:
// - ~/.taskpad/taskpad.toml (preferred)
// - Windows: %APPDATA%\taskpad\taskpad.toml
// - macOS: ~/Library/Application Support/taskpad/taskpad.toml
// - Linux/BSD: $XDG_CONFIG_HOME/taskpad/taskpad.toml or ~/.config/taskpad/taskpad.toml
//
// Project-level config locations (overrides user config):
// - ./taskpad.toml (preferred)
// - ./.taskpad.toml
package config
