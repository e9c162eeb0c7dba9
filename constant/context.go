package constant

type ContextKey string

// HolderIDKey carries the reservation holder identity (user/session/cart id)
// extracted by the auth middleware.
const HolderIDKey ContextKey = "holder_id"
