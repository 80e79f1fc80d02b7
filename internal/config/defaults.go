package config

// Default returns the built-in configuration: a rule set covering the
// usual suspects for temporary files, tool caches, and build output.
// Users extend or replace it via the JSON config file.
func Default() *Config {
	return &Config{
		ScanWorkers:    8,
		TopPerCategory: 50,
		SummaryTop:     15,
		Patterns: []RuleConfig{
			// Temporary files
			{Name: "Temp directories", Pattern: "**/{tmp,temp}/**", Category: "temp", ApplyTo: "dir", StopRecursion: true},
			{Name: "Temp files", Pattern: "**/*.{tmp,temp}", Category: "temp", ApplyTo: "file"},
			{Name: "Editor swap files", Pattern: "**/*.{swp,swo,bak}", Category: "temp", ApplyTo: "file"},
			{Name: "Backup files", Pattern: "**/*~", Category: "temp", ApplyTo: "file"},
			{Name: "Crash dumps", Pattern: "**/core.*", Category: "temp", ApplyTo: "file"},
			{Name: "Log files", Pattern: "**/*.log", Category: "temp", ApplyTo: "file"},

			// Caches
			{Name: "Cache directories", Pattern: "**/{.cache,cache,caches}/**", Category: "cache", ApplyTo: "dir", StopRecursion: true},
			{Name: "Python bytecode cache", Pattern: "**/__pycache__/**", Category: "cache", ApplyTo: "dir", StopRecursion: true},
			{Name: "Pip cache", Pattern: "**/.pip-cache/**", Category: "cache", ApplyTo: "dir", StopRecursion: true},
			{Name: "Pytest cache", Pattern: "**/.pytest_cache/**", Category: "cache", ApplyTo: "dir", StopRecursion: true},
			{Name: "Tool caches", Pattern: "**/.{gradle,m2,ivy2,cargo,npm,yarn}/**", Category: "cache", ApplyTo: "dir", StopRecursion: true},
			{Name: "Thumbnail caches", Pattern: "**/Thumbs.db", Category: "cache", ApplyTo: "file"},

			// Build artifacts
			{Name: "Node modules", Pattern: "**/node_modules/**", Category: "build_artifact", ApplyTo: "dir", StopRecursion: true},
			{Name: "Build output", Pattern: "**/{build,dist,out}/**", Category: "build_artifact", ApplyTo: "dir", StopRecursion: true},
			{Name: "Rust target", Pattern: "**/target/**", Category: "build_artifact", ApplyTo: "dir", StopRecursion: true},
			{Name: "Object files", Pattern: "**/*.{o,obj,a}", Category: "build_artifact", ApplyTo: "file"},
			{Name: "Python eggs", Pattern: "**/*.egg-info", Category: "build_artifact", ApplyTo: "dir", StopRecursion: true},
			{Name: "Tox environments", Pattern: "**/.tox/**", Category: "build_artifact", ApplyTo: "dir", StopRecursion: true},
		},
	}
}
