package errors

// User-friendly error messages
const (
	MsgListingNotFound    = "Listing not found."
	MsgForbidden          = "You can only modify your own listings."
	MsgAlreadyFavorited   = "This listing is already in your favorites."
	MsgNotFavorited       = "This listing is not in your favorites."
	MsgEmailTaken         = "An account with this email already exists."
	MsgConflict           = "The request conflicts with the current state."
	MsgUnauthorized       = "Please log in to continue."
	MsgServiceUnavailable = "We're unable to reach our data store right now. Please try again in a few minutes."
	MsgRateLimited        = "You're sending requests too quickly! Please wait a moment and try again."
	MsgInvalidParameters  = "The provided parameters are invalid. Please check your input and try again."
	MsgInternalError      = "Something went wrong on our end. Please try again later."
)
