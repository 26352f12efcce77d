package config

// VersionString is set at build time via ldflags.
var VersionString = "dev"
