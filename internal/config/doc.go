// Package config loads tinsel's runtime configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/tinsel/config.toml
//  3. If the file doesn't exist, start from Defaults
//  4. Apply environment overrides
//  5. Validate
//
// # TOML Format
//
//	[countdown]
//	month = 12
//	day = 25
//	hour = 8
//	celebrate_hours = 24
//
//	[scene]
//	check_every = "60s"
//	interval = "6h"
//	stagger = "1s"
//	db_path = "~/.local/share/tinsel/scene.db"
//
//	[generator]
//	mode = "remote"            # remote | endpoint | placeholder
//	endpoint = "127.0.0.1:8787"
//	base_url = "https://cloud.leonardo.ai/api/rest/v1"
//	model_id = "aa77f04e-3eec-4034-9c07-d0f619684628"
//	poll_interval = "1s"
//	poll_attempts = 30
//
//	[server]
//	listen = "127.0.0.1:8787"
//
//	[log]
//	path = "~/.local/share/tinsel/tinsel.log"
//	level = "info"
//
// Every field is optional and an explicit zero is kept: hour = 0 targets
// midnight and celebrate_hours = 0 rolls to next year as soon as the target
// passes. Durations use time.ParseDuration syntax. A zero or negative stagger
// disables the delay between catch-up additions.
//
// # Environment
//
//   - LEONARDO_API_KEY: image service credential (preferred over generator.api_key)
//   - TINSEL_LISTEN, TINSEL_DB, TINSEL_GENERATOR_URL, TINSEL_GENERATOR_MODE,
//     TINSEL_LOG_LEVEL
//
// Missing config files are NOT an error. A missing API key is not an error either:
// the scene falls back to placeholder glyphs.
package config
