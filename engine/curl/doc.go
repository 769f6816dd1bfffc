// Package curl implements the engine contract on top of libcurl.
//
// libcurl cannot call Go directly and cgo cannot call variadic C functions,
// so curl_easy_setopt and curl_formadd are reached through small C wrappers
// in shim.c. Callback options install one of two C functions that forward to
// the exported curlbridgePush and curlbridgePull, which hand the call to
// package marshal together with the userdata libcurl passes back.
//
// Building this package needs cgo and the libcurl development headers.
package curl
