package logx

type nopLogger struct{}

var nop Logger = nopLogger{}

// Nop returns a Logger that discards every entry.
func Nop() Logger { return nop }

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}

func (n nopLogger) With(...Field) Logger { return n }

func (nopLogger) Sync() error { return nil }
