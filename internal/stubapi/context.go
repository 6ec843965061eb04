// Copyright (c) 2026 TopLivres. All rights reserved.
// Author: fleuronvilik

package stubapi

import "context"

type contextKey int

const accountKey contextKey = iota

func withAccount(ctx context.Context, acct *account) context.Context {
	return context.WithValue(ctx, accountKey, acct)
}

// accountFrom returns the authenticated account, nil outside the
// authenticated subtree.
func accountFrom(ctx context.Context) *account {
	acct, _ := ctx.Value(accountKey).(*account)
	return acct
}
