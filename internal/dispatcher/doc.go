// Package dispatcher bridges a line-delimited JSON client to the buffer
// engine.
//
// Each request line names a command kind and its arguments:
//
//	{"id":"r1","cmd":"apply_edit","args":{"buffer_id":1,"start":0,"end":0,"text":"x"}}
//
// and is answered by exactly one response line carrying the same id:
//
//	{"id":"r1","ok":true,"result":null}
//	{"id":"r2","ok":false,"error":{"kind":"not_found","message":"..."}}
//
// Requests without an id are assigned a random UUID. Command kinds map to
// handlers through a fixed table; requests run on a bounded worker pool, so
// responses can arrive out of order. Argument names are snake_case; the
// camelCase spelling is accepted as well.
package dispatcher
