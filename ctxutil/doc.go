// Package ctxutil carries request-scoped values (user id, trace id, client
// address) through context.Context, mirroring them onto the gin context when
// one is attached.
package ctxutil
