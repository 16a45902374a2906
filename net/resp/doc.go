// Package resp writes JSON responses with a consistent shape.
//
// Successful responses carry the payload directly. Failures are rendered as
//
//	{
//	  "code": -404,             // business code from ecode
//	  "message": "invitation expired",
//	  "errors": {...}           // optional detail
//	}
//
// with the HTTP status derived from the code. Handlers usually call
//
//	resp.Success(c.Writer, data)
//	resp.Fail(c.Writer, resp.FromError(err))
package resp
