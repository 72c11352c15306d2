package platform

// Package platform contains OS/platform integration: filesystem helpers,
// safe output file naming, and OS open/reveal of saved files.
