// Package bridge exposes transfer handles as plain integers.
//
// A Handle is a generation-tagged slot in the bridge's own reference table,
// so a destroyed handle stays invalid even after its slot is reused. The zero
// Handle is never issued: DestroyHandle(0) does nothing and every other call
// with it fails with a nil pointer error.
//
// Typical use:
//
//	b := bridge.New(curl.New())
//	if err := b.GlobalInit(engine.GlobalDefault); err != nil {
//	    return err
//	}
//	defer b.GlobalCleanup()
//
//	h, err := b.CreateHandle()
//	if err != nil {
//	    return err
//	}
//	defer b.DestroyHandle(h)
//
//	b.SetOption(h, easy.KindObjectPointer, engine.OptURL, "https://example.com/")
//	b.SetCallbackOption(h, engine.OptWriteFunction, curlbridge.WriteFunc(os.Stdout.Write))
//	err = b.Perform(h)
package bridge
