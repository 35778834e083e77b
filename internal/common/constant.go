package common

// Process exit codes reported by the CLI.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

// ImageSuffix is the stem suffix the Roam exporter appends to re-uploaded images.
const ImageSuffix = "-image"

// DefaultContentType is used for extensions missing from the MIME table.
const DefaultContentType = "application/octet-stream"
