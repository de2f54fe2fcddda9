package entity

type LogExporter interface {
	Export(entry HTTPLogEntry) error
	Close()
}
