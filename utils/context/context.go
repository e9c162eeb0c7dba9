package context

import (
	"context"

	"github.com/Pinto1232/pos-system-sub004/constant"
)

// GetHolderID returns the reservation holder identity placed in the context
// by the auth middleware.
func GetHolderID(ctx context.Context) (string, bool) {
	v := ctx.Value(constant.HolderIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
