// Package curlbridge lets Go drive libcurl's blocking, callback-based easy
// interface while keeping Go's and C's ownership rules apart.
//
// The hard part is not HTTP. A single curl_easy_perform call re-enters Go many
// times (header lines, body chunks, request body reads), and every buffer or
// reference handed to C for the duration of a transfer must be released
// exactly once, even when a transfer fails halfway through setup.
//
// # Architecture Overview
//
//	curlbridge/          Root package with callback and form-field contracts
//	├── engine/          Transfer engine contract (codes, option ids, handles)
//	│   ├── curl/        libcurl through cgo, C shims and exported trampolines
//	│   └── sim/         Pure Go engine honouring the same pointer contract
//	├── resource/        Durable references, pins and per-handle registries
//	├── marshal/         Push/pull marshaling for re-entrant engine callbacks
//	├── easy/            Handle lifecycle, option layer, multipart forms
//	├── bridge/          Numeric, generation-checked handle surface
//	├── httpx/           Request builder and result parsing on top of easy
//	├── cache/           LRU disk cache and caching downloader
//	└── errors/          Structured error types
//
// # Quick Start
//
//	eng := curl.New()
//	if err := easy.GlobalInit(eng, easy.GlobalDefault); err != nil {
//	    log.Fatal(err)
//	}
//	defer easy.GlobalCleanup(eng)
//
//	h, err := easy.New(eng)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Close()
//
//	var body bytes.Buffer
//	h.SetString(engine.OptURL, "https://example.com/")
//	h.SetLong(engine.OptTimeout, 30)
//	h.SetWriteFunction(curlbridge.WriteFunc(func(p []byte) int {
//	    body.Write(p)
//	    return len(p)
//	}))
//	if err := h.Perform(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Ownership
//
// Strings passed as options are pinned for the duration of the setopt call
// and released right after, except CURLOPT_POSTFIELDS which libcurl keeps by
// reference; that buffer stays pinned until the handle is closed. Callback
// objects become durable references in the process-wide resource table so the
// trampolines can find them again on every re-entry. Multipart content is
// pinned in place, never copied.
//
// # Thread Safety
//
// A Handle must be driven by one goroutine at a time. Different handles are
// independent and may run concurrently. GlobalInit and GlobalCleanup are
// process-wide and must bracket the lifetime of every handle.
package curlbridge
