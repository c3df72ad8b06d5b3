package interfaces

// ProgressFunc is invoked once per processed symbol so a long batch is
// never silent. done counts completed symbols (1-based), total is the
// batch size.
type ProgressFunc func(symbol string, done, total int)
