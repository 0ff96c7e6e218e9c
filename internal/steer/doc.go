// Package steer implements the policy and decision core of a multi-AP Wi-Fi
// band-steering and load-balancing daemon: the candidate-selection
// predicate, the request admission filter, the per-station roaming trigger
// state machine, and the per-local-node kick controller.
//
// Every exported type in this package is pure or single-threaded: no type
// here takes a lock, starts a goroutine, or performs I/O. Callers run the
// whole package on one event-loop goroutine and execute the Radio actions
// (TriggerClientScan, NotifyClientDisassoc, KickClient) and EventSink
// emissions it returns or invokes.
package steer
