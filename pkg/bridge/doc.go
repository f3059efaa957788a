// Package bridge hands inbound requests to the embedded tile engine.
//
// The engine consumes a gateway style string environment rather than a
// transport object. Synthesizer builds that environment from a Request:
// well known keys first (method, protocol, addressing, content type and
// length, the split of the target into PATH_INFO and QUERY_STRING),
// then every remaining header folded into HTTP_<NAME> form. Repeated
// headers join with a comma; a header whose folded name collides with
// an already assigned key is dropped, which keeps client supplied
// Content-Length or Remote-Addr lookalikes out of the environment.
//
// Invoke pairs the environment with the caller's streams, runs the
// application and drains the diagnostic capture into the host log:
//
//	resp := bridge.NewHTTPResponder(w)
//	err := br.Invoke(ctx, app, bridge.FromHTTP(r), resp)
//
// Two Responder implementations are provided: one on top of
// http.ResponseWriter and one writing the raw status line, header block
// and body to a byte stream.
package bridge
