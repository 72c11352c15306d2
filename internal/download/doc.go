package download

// Package download implements the client-side task lifecycle controller. It
// turns user commands into optimistic TaskStore mutations plus remote calls,
// rolls them back on failure, and merges periodic polls of the remote task
// list without letting a stale poll overwrite a newer command.
