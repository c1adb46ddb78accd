// Package aggregates owns the transaction boundary for multi-table writes.
//
// Services hand a closure to Writer.Write; it runs inside one store transaction,
// is retried when the store reports a transient lock failure, and its error is
// mapped onto the apperr taxonomy before it leaves the package.
package aggregates
