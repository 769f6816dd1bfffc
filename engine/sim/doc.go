// Package sim is a pure-Go transfer engine that honours the engine contract
// at the pointer level without touching the network.
//
// String options are copied when set, except OptPostFields, which is kept as
// a raw pointer and only read during Perform, the way libcurl treats it. Form
// part buffers are likewise read lazily. Every call is recorded so tests can
// assert what the bridge handed over, and a Responder scripts the response
// that Perform streams back through the installed trampolines.
package sim
