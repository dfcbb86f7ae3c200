package broadcast

import "github.com/ceyewan/portalgun/xerrors"

var (
	ErrUnknownDriver     = xerrors.Wrap(xerrors.ErrInvalidInput, "broadcast: unknown driver")
	ErrConnectorRequired = xerrors.Wrap(xerrors.ErrInvalidInput, "broadcast: connector required")
	ErrNilHandler        = xerrors.Wrap(xerrors.ErrInvalidInput, "broadcast: nil handler")
	ErrClosed            = xerrors.Wrap(xerrors.ErrUnavailable, "broadcast: channel closed")
)
