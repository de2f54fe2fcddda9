package entity

// ClientContext describes the host the logger runs on. Attached verbatim to
// every captured entry.
type ClientContext struct {
	DeviceInfo  string
	AppInfo     string
	NetworkType string
}

type ContextProvider interface {
	Context() ClientContext
}
