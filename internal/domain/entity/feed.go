package entity

type LogFeed interface {
	Entries() <-chan HTTPLogEntry
	Close()
}
