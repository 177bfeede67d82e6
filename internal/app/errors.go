package app

import errorsmod "cosmossdk.io/errors"

const codespace = "app"

var (
	ErrTxDecode       = errorsmod.Register(codespace, 2, "tx decode error")
	ErrUnknownTx      = errorsmod.Register(codespace, 3, "unknown tx type")
	ErrUnauthorizedTx = errorsmod.Register(codespace, 4, "tx authentication failed")
	ErrBadNonce       = errorsmod.Register(codespace, 5, "invalid tx nonce")
	ErrUnknownQuery   = errorsmod.Register(codespace, 6, "unknown query path")
)
