// Package httpx is a small HTTP client built on package easy.
//
// A Client carries transfer defaults. Each Request is configured with a
// builder and executed with Do, which creates a handle, streams headers and
// body through callbacks, and always closes the handle again.
//
//	c := httpx.NewClient(curl.New(), httpx.WithTimeout(10*time.Second))
//	res, err := c.NewRequest().
//	    Post("https://example.com/upload").
//	    AddParam("kind", "avatar").
//	    AddMultipart("file", "me.png", "", png).
//	    Do(ctx)
//
// POST parameters are sent url-encoded unless multipart parts were added, in
// which case every parameter becomes a plain form field. List parameters are
// sent as name[] and are not supported in multipart bodies.
package httpx
