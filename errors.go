package centralign

import (
	"errors"

	"github.com/codeBunny2022/CentrAlignWebapp/application/service"
)

// Exported errors for library consumers.
var (
	// ErrNoDatabase indicates no database backend was configured.
	ErrNoDatabase = errors.New("centralign: no database configured")

	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = service.ErrClientClosed
)
