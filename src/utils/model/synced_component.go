package model

type SyncedComponent string

const (
	// Logical clock of the synchronizer
	SyncedComponentClock SyncedComponent = "Clock"
)
