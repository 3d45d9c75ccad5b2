// Package command implements the miniDB line protocol: tokenizing a request line,
// validating it against the command grammar and executing it against a store.IStore.
//
// Grammar (tokens are separated by runs of ASCII whitespace):
//
//	POST <key> <value>   upsert            -> "0"
//	GET <key>            lookup            -> "0 <value>" or "1"
//	DELETE <key>         remove            -> "0" or "1"
//	anything else        (incl. empty)     -> "2"
//
// Every response is terminated by a single newline. Invalid input never closes the
// connection; the client simply receives status 2 and may continue.
package command
