/*
Package session provides safe concurrent access to intake sessions.

Each answer request is a read-modify-write of exactly one session record;
concurrent answers for the same session id are a lost-update race. The
Manager serializes access per session id with reference-counted in-process
locks and, optionally, a distributed locker for multi-replica deployments.
Different sessions proceed fully in parallel.
*/
package session
