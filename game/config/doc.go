// Package config provides puzzle preset loading and caching.
//
// Presets are small JSON documents describing a playable configuration:
// board size, countdown scaling (seconds per tile), and the maximum rendered
// board edge in pixels. The Manager serves the built-in classic presets
// (3×3, 4×4, 5×5) and, when a preset directory is configured, any JSON
// preset files found there. Loaded presets are validated and cached; saving
// a preset writes it back to the directory and refreshes the cache.
package config
