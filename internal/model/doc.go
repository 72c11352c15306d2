package model

// Package model defines domain data structures shared by the client: remote
// download tasks, their status enum and view partitions, and the service's
// system snapshot. Structures mirror the service's JSON contract.
