// Package host runs a ward guest module and bridges it to a host UI tree and
// host capabilities.
//
// A Session owns one guest instance together with every table that refers to
// it: the identity registry, the data stash, the listener table, file and
// blob handles, object URLs and outstanding completion tokens. All guest
// entry points run on the session's cooperative loop; asynchronous
// capabilities run on their own goroutines and come back through the loop.
//
//	s, err := host.NewSession(host.WithDocument(doc, root), host.WithKVStore(store))
//	if err != nil { ... }
//	defer s.Close(ctx)
//	if err := s.Start(ctx, wasm); err != nil { ... }
//	<-s.Done()
package host
